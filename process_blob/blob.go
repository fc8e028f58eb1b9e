package process_blob

import (
	"fmt"

	"crusadermem/process"
)

// ProcessBlob is a contiguous copy of process memory starting at a base address
type ProcessBlob struct {
	baseaddress process.ProcessMemoryAddress
	data        []byte
}

func NewProcessBlob(baseAddress process.ProcessMemoryAddress, data []byte) *ProcessBlob {
	return &ProcessBlob{
		baseaddress: baseAddress,
		data:        data,
	}
}

func (p *ProcessBlob) BaseAddress() process.ProcessMemoryAddress {
	return p.baseaddress
}

func (p *ProcessBlob) Data() []byte {
	return p.data
}

func (p *ProcessBlob) Size() process.ProcessMemorySize {
	return process.ProcessMemorySize(len(p.data))
}

// Contains reports whether [addr, addr+size) lies entirely inside the blob
func (p *ProcessBlob) Contains(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) bool {
	if addr < p.baseaddress {
		return false
	}
	offset := uint64(addr - p.baseaddress)
	return offset <= uint64(len(p.data)) && uint64(size) <= uint64(len(p.data))-offset
}

// ReadMemory returns a copy of size bytes at addr
func (p *ProcessBlob) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	if !p.Contains(addr, size) {
		return nil, fmt.Errorf("address %s (+%d) out of bounds", addr.ToString(), size)
	}
	offset := uint64(addr - p.baseaddress)
	result := make([]byte, size)
	copy(result, p.data[offset:offset+uint64(size)])
	return result, nil
}

// WriteMemory overwrites bytes at addr; the range must lie inside the blob
func (p *ProcessBlob) WriteMemory(addr process.ProcessMemoryAddress, data []byte) error {
	if !p.Contains(addr, process.ProcessMemorySize(len(data))) {
		return fmt.Errorf("address %s (+%d) out of bounds", addr.ToString(), len(data))
	}
	copy(p.data[addr-p.baseaddress:], data)
	return nil
}
