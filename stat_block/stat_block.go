// Package stat_block reads configured blocks of entity stats in one transfer per block.
package stat_block

import (
	"fmt"

	"crusadermem/config"
	"crusadermem/process"
	"crusadermem/process_codec"
)

// ChunkReader reads typed values at several offsets from a base address in one transfer
type ChunkReader interface {
	ReadChunkTypes(name string, base process.ProcessMemoryAddress, offsets []process.ProcessMemorySize, types []process_codec.SemanticType) ([]process_codec.Value, error)
}

// Field is one stat of one entity
type Field struct {
	Name  string
	Index int // entity index within the block
	Value process_codec.Value
}

// Request is the flattened form of a block: parallel offsets and types, plus
// the stat and entity each position belongs to
type Request struct {
	Base    process.ProcessMemoryAddress
	Offsets []process.ProcessMemorySize
	Types   []process_codec.SemanticType
	Names   []string
	Indexes []int
}

// Expand flattens block stat-major: every entity's first stat, then every
// entity's second stat, and so on. Entity i's stat lives at i*stride + offset.
func Expand(block config.Block) Request {
	count := block.Count
	if count < 1 {
		count = 1
	}

	n := count * len(block.StatOffsets)
	req := Request{
		Base:    process.ProcessMemoryAddress(block.Address),
		Offsets: make([]process.ProcessMemorySize, 0, n),
		Types:   make([]process_codec.SemanticType, 0, n),
		Names:   make([]string, 0, n),
		Indexes: make([]int, 0, n),
	}

	for _, stat := range block.StatOffsets {
		for i := 0; i < count; i++ {
			req.Offsets = append(req.Offsets, process.ProcessMemorySize(uint64(i)*block.Stride+stat.Offset))
			req.Types = append(req.Types, stat.Type)
			req.Names = append(req.Names, stat.Name)
			req.Indexes = append(req.Indexes, i)
		}
	}
	return req
}

// Read reads every stat of every entity in block from the named process
func Read(reader ChunkReader, name string, block config.Block) ([]Field, error) {
	req := Expand(block)

	values, err := reader.ReadChunkTypes(name, req.Base, req.Offsets, req.Types)
	if err != nil {
		return nil, fmt.Errorf("block %s: %w", block.Name, err)
	}

	fields := make([]Field, len(values))
	for i, v := range values {
		fields[i] = Field{Name: req.Names[i], Index: req.Indexes[i], Value: v}
	}
	return fields, nil
}

// ByEntity regroups fields into one name->value map per entity
func ByEntity(fields []Field) []map[string]process_codec.Value {
	var entities []map[string]process_codec.Value
	for _, f := range fields {
		for len(entities) <= f.Index {
			entities = append(entities, make(map[string]process_codec.Value))
		}
		entities[f.Index][f.Name] = f.Value
	}
	return entities
}
