package process

import (
	"errors"
	"fmt"
)

// MaxReadSize bounds a single transfer. Backends refuse larger reads before
// allocating a buffer for them.
const MaxReadSize = ProcessMemorySize(64 << 20)

// ErrReadTooLarge is returned by backends for reads above MaxReadSize
var ErrReadTooLarge = errors.New("read exceeds maximum transfer size")

// CheckReadSize returns ErrReadTooLarge when size is above MaxReadSize
func CheckReadSize(size ProcessMemorySize) error {
	if size > MaxReadSize {
		return fmt.Errorf("%d bytes: %w", uint(size), ErrReadTooLarge)
	}
	return nil
}

// ProcessMemoryAddress represents an absolute address within a process
type ProcessMemoryAddress uint64

func (pma ProcessMemoryAddress) ToString() string {
	return fmt.Sprintf("0x%X", uint64(pma))
}

// Add returns the address offset bytes past pma
func (pma ProcessMemoryAddress) Add(offset ProcessMemorySize) ProcessMemoryAddress {
	return pma + ProcessMemoryAddress(offset)
}

// ProcessMemorySize represents a size of a memory region, or an offset relative to a base address
type ProcessMemorySize uint

func (pms ProcessMemorySize) ToString() string {
	return fmt.Sprintf("%d bytes", uint(pms))
}
