//go:build linux

package process_linux

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"crusadermem/process"
	"crusadermem/process/memory_map"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

var (
	// ErrAddressNotMapped is returned when a read range is not fully covered by readable mappings
	ErrAddressNotMapped = errors.New("address not mapped")

	// ErrProcessNotOpen is returned when reading from a process that is not open
	ErrProcessNotOpen = errors.New("process not open")
)

// LinuxProcess implements the process.Process interface for Linux systems
type LinuxProcess struct {
	pid process.ProcessID
	log *logger.Logger
	mm  []memory_map.MemoryMapItem
	mu  sync.Mutex
}

var _ process.Process = (*LinuxProcess)(nil)

// NewWithPID creates a new LinuxProcess instance and opens it with the given PID
func NewWithPID(pid process.ProcessID) (*LinuxProcess, error) {
	p := &LinuxProcess{}
	if err := p.Open(pid); err != nil {
		return nil, err
	}
	return p, nil
}

// Open attaches to pid. The memory map is loaded here: being unable to read
// it means we lack the ptrace access needed for process_vm_readv as well.
func (p *LinuxProcess) Open(pid process.ProcessID) error {
	procPath := fmt.Sprintf("/proc/%d", pid)
	if _, err := os.Stat(procPath); err != nil {
		return fmt.Errorf("process with PID %d is not available: %w", pid, err)
	}

	mm, err := memory_map.ReadMemoryMap(int(pid))
	if err != nil {
		return fmt.Errorf("failed to read memory map: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.pid = pid
	p.mm = mm
	p.log = logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, fmt.Sprintf("process-%d", pid)))
	p.log.Debugln("Process opened,", len(mm), "regions mapped")

	return nil
}

func (p *LinuxProcess) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pid == 0 {
		return ErrProcessNotOpen
	}

	p.log.Debugln("Process closed")
	p.pid = 0
	p.mm = nil

	return nil
}

// GetPID returns the process ID
func (p *LinuxProcess) GetPID() process.ProcessID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pid
}

// ReadMemory reads memory from the process at the specified address
func (p *LinuxProcess) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	p.mu.Lock()
	pid := p.pid
	valid := memory_map.IsReadableRange(uint64(addr), uint(size), p.mm)
	p.mu.Unlock()

	if pid == 0 {
		return nil, ErrProcessNotOpen
	}
	if size == 0 {
		return []byte{}, nil
	}
	if err := process.CheckReadSize(size); err != nil {
		return nil, err
	}
	if !valid {
		return nil, fmt.Errorf("%s (+%d): %w", addr.ToString(), size, ErrAddressNotMapped)
	}

	// The syscall runs without holding the lock
	data, err := readRemote(pid, addr, size)
	if err != nil {
		return nil, fmt.Errorf("process_vm_readv: failed to read process memory: %w", err)
	}

	return data, nil
}
