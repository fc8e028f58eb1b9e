package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"crusadermem/config"
	"crusadermem/process"
	"crusadermem/stat_block"
)

// region is a contiguous span of process memory
type region struct {
	Address process.ProcessMemoryAddress
	Size    process.ProcessMemorySize
}

func (r region) end() uint64 {
	return uint64(r.Address) + uint64(r.Size)
}

// parseRegion parses "addr:size", each part decimal or 0x-prefixed
func parseRegion(s string) (region, error) {
	addrPart, sizePart, ok := strings.Cut(s, ":")
	if !ok {
		return region{}, fmt.Errorf("region %q: want addr:size", s)
	}
	addr, err := strconv.ParseUint(addrPart, 0, 64)
	if err != nil {
		return region{}, fmt.Errorf("region %q: bad address: %w", s, err)
	}
	size, err := strconv.ParseUint(sizePart, 0, 64)
	if err != nil {
		return region{}, fmt.Errorf("region %q: bad size: %w", s, err)
	}
	if size == 0 {
		return region{}, fmt.Errorf("region %q: size must be positive", s)
	}
	return region{Address: process.ProcessMemoryAddress(addr), Size: process.ProcessMemorySize(size)}, nil
}

// blockRegion is the span a chunk read of block covers, with the offset and
// width of every field relative to the block base
func blockRegion(block config.Block) (region, []region) {
	req := stat_block.Expand(block)

	var span uint64
	fields := make([]region, len(req.Offsets))
	for i, offset := range req.Offsets {
		fields[i] = region{Address: process.ProcessMemoryAddress(offset), Size: req.Types[i].Width()}
		span = max(span, fields[i].end())
	}
	return region{Address: req.Base, Size: process.ProcessMemorySize(span)}, fields
}

// defaultRegions covers everything the configuration reads: the two phase
// values and every stat block
func defaultRegions(cfg *config.Config) []region {
	addresses := cfg.PhaseAddresses()
	regions := []region{
		{Address: addresses.Year, Size: 4},
		{Address: addresses.Texture, Size: 256},
	}
	for _, block := range cfg.Blocks {
		r, _ := blockRegion(block)
		regions = append(regions, r)
	}
	return regions
}

// mergeRegions sorts regions and coalesces the ones that overlap or touch
func mergeRegions(regions []region) []region {
	if len(regions) == 0 {
		return nil
	}

	sorted := append([]region(nil), regions...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Address < sorted[j].Address
	})

	merged := []region{sorted[0]}
	for _, r := range sorted[1:] {
		last := &merged[len(merged)-1]
		if uint64(r.Address) <= last.end() {
			if r.end() > last.end() {
				last.Size = process.ProcessMemorySize(r.end() - uint64(last.Address))
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}
