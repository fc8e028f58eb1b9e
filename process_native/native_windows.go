//go:build windows

package process_native

import (
	"crusadermem/process"
	"crusadermem/process_windows"
)

// NewHelper returns the process backend for this platform
func NewHelper() (process.ProcessHelper, error) {
	return process_windows.NewHelper(), nil
}
