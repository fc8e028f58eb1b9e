// Package process_native selects the process.ProcessHelper backend for the running OS.
package process_native
