//go:build windows

package process_windows

import (
	"crusadermem/process"
)

// WindowsProcessHelper implements the process.ProcessHelper interface
type WindowsProcessHelper struct {
	*WindowsProcessFinder
}

var _ process.ProcessHelper = (*WindowsProcessHelper)(nil)

// NewHelper creates a new WindowsProcessHelper
func NewHelper() *WindowsProcessHelper {
	return &WindowsProcessHelper{
		WindowsProcessFinder: NewProcessFinder(),
	}
}

// NewWithPID opens the process with the given PID
func (h *WindowsProcessHelper) NewWithPID(pid process.ProcessID) (process.Process, error) {
	proc, err := NewWithPID(pid)
	if err != nil {
		return nil, err
	}
	return proc, nil
}
