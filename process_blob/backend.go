package process_blob

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"crusadermem/process"
)

// ErrHandleClosed is returned when a Backend handle is used after Close
var ErrHandleClosed = errors.New("handle closed")

// Backend is an in-memory process.ProcessHelper serving ProcessDumps.
// It counts handles and transfers so callers can check how the readers use
// the OS boundary. It is safe for concurrent use.
type Backend struct {
	mu      sync.Mutex
	dumps   []*ProcessDump
	open    int
	opens   int
	reads   []process.ProcessMemorySize
	openErr error
	readErr error
	findErr error
}

var _ process.ProcessHelper = (*Backend)(nil)

// NewBackend creates a Backend serving dumps
func NewBackend(dumps ...*ProcessDump) *Backend {
	return &Backend{dumps: dumps}
}

// Add makes dump visible to FindProcessByName
func (b *Backend) Add(dump *ProcessDump) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dumps = append(b.dumps, dump)
}

// Remove drops every dump called name, as if the process had exited.
// Handles already open keep working.
func (b *Backend) Remove(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	kept := b.dumps[:0]
	for _, dump := range b.dumps {
		if dump.Name != name {
			kept = append(kept, dump)
		}
	}
	b.dumps = kept
}

// FailFind makes process enumeration fail with err (nil to clear)
func (b *Backend) FailFind(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.findErr = err
}

// FailOpen makes NewWithPID fail with err (nil to clear)
func (b *Backend) FailOpen(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.openErr = err
}

// FailRead makes every transfer fail with err (nil to clear)
func (b *Backend) FailRead(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.readErr = err
}

// OpenHandles returns the number of handles currently open
func (b *Backend) OpenHandles() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open
}

// Opens returns the number of handles opened so far
func (b *Backend) Opens() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.opens
}

// Reads returns the size of every transfer issued so far, in order
func (b *Backend) Reads() []process.ProcessMemorySize {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]process.ProcessMemorySize(nil), b.reads...)
}

// FindProcessByName returns the dumps called name, lowest PID first
func (b *Backend) FindProcessByName(name string) ([]process.ProcessInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.findErr != nil {
		return nil, b.findErr
	}

	var results []process.ProcessInfo
	for _, dump := range b.dumps {
		if dump.Name == name {
			results = append(results, process.ProcessInfo{PID: dump.PID, Name: dump.Name, Exe: dump.Name})
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].PID < results[j].PID
	})
	return results, nil
}

// NewWithPID opens a handle on the dump with the given PID
func (b *Backend) NewWithPID(pid process.ProcessID) (process.Process, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.openErr != nil {
		return nil, b.openErr
	}

	for _, dump := range b.dumps {
		if dump.PID == pid {
			b.open++
			b.opens++
			return &handle{backend: b, dump: dump}, nil
		}
	}
	return nil, fmt.Errorf("process with PID %d does not exist", pid)
}

// handle is an open capability on a ProcessDump
type handle struct {
	backend *Backend
	dump    *ProcessDump
	closed  bool
}

func (h *handle) GetPID() process.ProcessID {
	return h.dump.PID
}

func (h *handle) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	b := h.backend
	b.mu.Lock()
	if h.closed {
		b.mu.Unlock()
		return nil, ErrHandleClosed
	}
	b.reads = append(b.reads, size)
	readErr := b.readErr
	b.mu.Unlock()

	if readErr != nil {
		return nil, readErr
	}
	if err := process.CheckReadSize(size); err != nil {
		return nil, err
	}
	return h.dump.ReadMemory(addr, size)
}

func (h *handle) Close() error {
	b := h.backend
	b.mu.Lock()
	defer b.mu.Unlock()

	if h.closed {
		return ErrHandleClosed
	}
	h.closed = true
	b.open--
	return nil
}
