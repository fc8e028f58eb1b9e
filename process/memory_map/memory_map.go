package memory_map

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// MemoryMapItem represents a memory region in a process's address space
type MemoryMapItem struct {
	Address uint64 `json:"address"` // The starting address of the memory region
	Size    uint   `json:"size"`    // The size of the memory region in bytes
	Perms   string `json:"perms"`   // Permissions (e.g., "r-xp" for read, execute, private)
}

// String returns a string representation of the memory map item
func (mmItem MemoryMapItem) String() string {
	return fmt.Sprintf("Address: %x, Size: %d, Perms: %s", mmItem.Address, mmItem.Size, mmItem.Perms)
}

// End returns the first address past the region
func (mmItem MemoryMapItem) End() uint64 {
	return mmItem.Address + uint64(mmItem.Size)
}

func (mmItem MemoryMapItem) IsReadable() bool {
	return len(mmItem.Perms) > 0 && mmItem.Perms[0] == 'r'
}

// Parse reads memory regions in the /proc/[pid]/maps format, sorted by address.
// Malformed lines are skipped.
func Parse(r io.Reader) ([]MemoryMapItem, error) {
	var memoryMap []MemoryMapItem
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}

		// Parse address range (e.g., "00400000-0040b000")
		start, end, ok := strings.Cut(fields[0], "-")
		if !ok {
			continue
		}

		startAddr, err := strconv.ParseUint(start, 16, 64)
		if err != nil {
			continue
		}

		endAddr, err := strconv.ParseUint(end, 16, 64)
		if err != nil || endAddr <= startAddr {
			continue
		}

		memoryMap = append(memoryMap, MemoryMapItem{
			Address: startAddr,
			Size:    uint(endAddr - startAddr),
			Perms:   fields[1],
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	sort.Slice(memoryMap, func(i, j int) bool {
		return memoryMap[i].Address < memoryMap[j].Address
	})

	return memoryMap, nil
}

// IsReadableRange reports whether every byte of [addr, addr+size) lies in
// readable regions. memoryMap must be sorted by address; adjacent regions may
// be chained.
func IsReadableRange(addr uint64, size uint, memoryMap []MemoryMapItem) bool {
	end := addr + uint64(size)
	if end < addr {
		return false
	}
	if size == 0 {
		return true
	}

	i := sort.Search(len(memoryMap), func(i int) bool {
		return memoryMap[i].End() > addr
	})

	cursor := addr
	for ; i < len(memoryMap); i++ {
		item := memoryMap[i]
		if item.Address > cursor || !item.IsReadable() {
			return false
		}
		cursor = item.End()
		if cursor >= end {
			return true
		}
	}
	return false
}
