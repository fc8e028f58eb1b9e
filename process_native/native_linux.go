//go:build linux

package process_native

import (
	"crusadermem/process"
	"crusadermem/process_linux"
)

// NewHelper returns the process backend for this platform
func NewHelper() (process.ProcessHelper, error) {
	return process_linux.NewHelper(), nil
}
