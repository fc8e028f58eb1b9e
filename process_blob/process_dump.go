package process_blob

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"crusadermem/process"
	"crusadermem/process/memory_map"
)

// ErrAddressNotMapped is returned when a read is not covered by any region of the dump
var ErrAddressNotMapped = errors.New("address not mapped")

// ProcessDump is a named set of memory regions captured from (or standing in
// for) a running process.
type ProcessDump struct {
	PID  process.ProcessID
	Name string

	mu      sync.RWMutex
	regions []*ProcessBlob
}

type dumpMetadata struct {
	PID  process.ProcessID `json:"pid"`
	Name string            `json:"name"`
}

// NewProcessDump creates an empty dump for a process called name
func NewProcessDump(pid process.ProcessID, name string) *ProcessDump {
	return &ProcessDump{PID: pid, Name: name}
}

// AddRegion copies data into the dump as a region starting at addr.
// Regions must not overlap.
func (p *ProcessDump) AddRegion(addr process.ProcessMemoryAddress, data []byte) error {
	blob := NewProcessBlob(addr, append([]byte(nil), data...))
	end := uint64(addr) + uint64(len(data))

	p.mu.Lock()
	defer p.mu.Unlock()

	for _, region := range p.regions {
		regionEnd := uint64(region.BaseAddress()) + uint64(region.Size())
		if uint64(addr) < regionEnd && uint64(region.BaseAddress()) < end {
			return fmt.Errorf("region %s overlaps region %s", addr.ToString(), region.BaseAddress().ToString())
		}
	}

	p.regions = append(p.regions, blob)
	sort.Slice(p.regions, func(i, j int) bool {
		return p.regions[i].BaseAddress() < p.regions[j].BaseAddress()
	})
	return nil
}

// MemoryMap describes the regions held by the dump
func (p *ProcessDump) MemoryMap() []memory_map.MemoryMapItem {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.memoryMapLocked()
}

func (p *ProcessDump) memoryMapLocked() []memory_map.MemoryMapItem {
	result := make([]memory_map.MemoryMapItem, 0, len(p.regions))
	for _, region := range p.regions {
		result = append(result, memory_map.MemoryMapItem{
			Address: uint64(region.BaseAddress()),
			Size:    uint(region.Size()),
			Perms:   "r--p",
		})
	}
	return result
}

// ReadMemory reads size bytes at addr. The range must lie in a single region.
func (p *ProcessDump) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, region := range p.regions {
		if region.Contains(addr, size) {
			return region.ReadMemory(addr, size)
		}
	}
	return nil, fmt.Errorf("%s (+%d): %w", addr.ToString(), size, ErrAddressNotMapped)
}

// WriteMemory overwrites bytes inside an existing region
func (p *ProcessDump) WriteMemory(addr process.ProcessMemoryAddress, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, region := range p.regions {
		if region.Contains(addr, process.ProcessMemorySize(len(data))) {
			return region.WriteMemory(addr, data)
		}
	}
	return fmt.Errorf("%s (+%d): %w", addr.ToString(), len(data), ErrAddressNotMapped)
}

func blobFilename(item memory_map.MemoryMapItem) string {
	return fmt.Sprintf("blob_0x%x_%d.bin", item.Address, item.Size)
}

// Save writes the dump to dirname as metadata.json, process_memory_map.json
// and one blob file per region.
func (p *ProcessDump) Save(dirname string) error {
	if err := os.MkdirAll(dirname, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	metadataJSON, err := json.MarshalIndent(dumpMetadata{PID: p.PID, Name: p.Name}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dirname, "metadata.json"), metadataJSON, 0644); err != nil {
		return fmt.Errorf("failed to write metadata file: %w", err)
	}

	mm := p.memoryMapLocked()
	mmJSON, err := json.MarshalIndent(mm, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal memory map: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dirname, "process_memory_map.json"), mmJSON, 0644); err != nil {
		return fmt.Errorf("failed to write memory map file: %w", err)
	}

	for i, region := range p.regions {
		filename := filepath.Join(dirname, blobFilename(mm[i]))
		if err := os.WriteFile(filename, region.Data(), 0644); err != nil {
			return fmt.Errorf("failed to write blob %s: %w", filename, err)
		}
	}

	return nil
}

// LoadDump reads a dump previously written by Save
func LoadDump(dirname string) (*ProcessDump, error) {
	metadataBytes, err := os.ReadFile(filepath.Join(dirname, "metadata.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	var metadata dumpMetadata
	if err := json.Unmarshal(metadataBytes, &metadata); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}

	mmBytes, err := os.ReadFile(filepath.Join(dirname, "process_memory_map.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read memory map: %w", err)
	}

	var mm []memory_map.MemoryMapItem
	if err := json.Unmarshal(mmBytes, &mm); err != nil {
		return nil, fmt.Errorf("failed to unmarshal memory map: %w", err)
	}

	dump := NewProcessDump(metadata.PID, metadata.Name)
	for _, item := range mm {
		filename := filepath.Join(dirname, blobFilename(item))
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to read blob %s: %w", filename, err)
		}
		if uint(len(data)) != item.Size {
			return nil, fmt.Errorf("blob %s holds %d bytes, memory map says %d", filename, len(data), item.Size)
		}
		if err := dump.AddRegion(process.ProcessMemoryAddress(item.Address), data); err != nil {
			return nil, err
		}
	}

	return dump, nil
}
