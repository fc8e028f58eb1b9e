// Package process provides the types, interfaces and errors shared by the process backends
package process

import (
	"errors"
	"fmt"
	"strings"
)

// Failure kinds. Every error returned by a locate, open, read or decode step
// matches exactly one of these with errors.Is.
var (
	// ErrProcessNotFound is returned when no running process matches the requested name.
	ErrProcessNotFound = errors.New("process not found")

	// ErrProcessOpenFailed is returned when a matching process exists but could not be opened for reading.
	ErrProcessOpenFailed = errors.New("failed to open process")

	// ErrMemoryReadFailed is returned when the OS-level transfer failed or returned fewer bytes than requested.
	ErrMemoryReadFailed = errors.New("failed to read memory")

	// ErrInvalidRequest is returned for malformed read requests and for buffers too short to decode.
	ErrInvalidRequest = errors.New("invalid request")
)

// MemoryReadError describes a failed read against a named process.
// It unwraps to both its Kind and the underlying cause.
type MemoryReadError struct {
	Kind       error
	Process    string
	Address    ProcessMemoryAddress
	HasAddress bool
	Err        error
}

func (e *MemoryReadError) Error() string {
	var details []string
	if e.Process != "" {
		details = append(details, fmt.Sprintf("process '%s'", e.Process))
	}
	if e.HasAddress {
		details = append(details, "address "+e.Address.ToString())
	}
	msg := e.Kind.Error()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	details = append(details, msg)
	return strings.Join(details, "; ")
}

func (e *MemoryReadError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NotFound builds an ErrProcessNotFound error for name
func NotFound(name string, cause error) error {
	return &MemoryReadError{Kind: ErrProcessNotFound, Process: name, Err: cause}
}

// OpenFailed builds an ErrProcessOpenFailed error for name
func OpenFailed(name string, cause error) error {
	return &MemoryReadError{Kind: ErrProcessOpenFailed, Process: name, Err: cause}
}

// ReadFailed builds an ErrMemoryReadFailed error for a transfer at addr
func ReadFailed(name string, addr ProcessMemoryAddress, cause error) error {
	return &MemoryReadError{Kind: ErrMemoryReadFailed, Process: name, Address: addr, HasAddress: true, Err: cause}
}

// InvalidRequest builds an ErrInvalidRequest error
func InvalidRequest(format string, args ...any) error {
	return &MemoryReadError{Kind: ErrInvalidRequest, Err: fmt.Errorf(format, args...)}
}
