//go:build linux

package process_linux

import (
	"crusadermem/process"
)

// LinuxProcessHelper implements the process.ProcessHelper interface
type LinuxProcessHelper struct {
	*LinuxProcessFinder
}

var _ process.ProcessHelper = (*LinuxProcessHelper)(nil)

// NewHelper creates a new LinuxProcessHelper
func NewHelper() *LinuxProcessHelper {
	return &LinuxProcessHelper{
		LinuxProcessFinder: NewProcessFinder(),
	}
}

// NewWithPID opens the process with the given PID
func (h *LinuxProcessHelper) NewWithPID(pid process.ProcessID) (process.Process, error) {
	proc, err := NewWithPID(pid)
	if err != nil {
		return nil, err
	}
	return proc, nil
}
