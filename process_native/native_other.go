//go:build !linux && !windows

package process_native

import (
	"fmt"
	"runtime"

	"crusadermem/process"
)

// NewHelper returns the process backend for this platform
func NewHelper() (process.ProcessHelper, error) {
	return nil, fmt.Errorf("reading process memory is not supported on %s", runtime.GOOS)
}
