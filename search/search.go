// Package search scans raw memory spans for a known value. Watching a stat
// change in game and searching for its old and new values is how the offsets
// in a configuration are found.
package search

import (
	"bytes"
	"encoding/binary"
	"strconv"

	"crusadermem/process"
	"crusadermem/process_codec"

	"golang.org/x/text/encoding/charmap"
)

// Searcher holds configuration for the search
type Searcher struct {
	MinAlignment uint
	MaxResults   int
}

// Option is a function that configures a Searcher
type Option func(*Searcher)

func WithMinAlignment(align uint) Option {
	return func(s *Searcher) {
		s.MinAlignment = align
	}
}

// WithMaxResults stops the search after n matches (0 for no limit)
func WithMaxResults(n int) Option {
	return func(s *Searcher) {
		s.MaxResults = n
	}
}

// SearchResult is one match
type SearchResult struct {
	Address process.ProcessMemoryAddress
	Offset  process.ProcessMemorySize // from the start of the span
}

// ParseValue parses s as a value of type t, the inverse of Value.String for
// numbers and booleans. Text is taken verbatim.
func ParseValue(t process_codec.SemanticType, s string) (process_codec.Value, error) {
	switch t {
	case process_codec.Int32:
		n, err := strconv.ParseUint(s, 0, 32)
		if err != nil {
			return process_codec.Value{}, process.InvalidRequest("bad int %q: %v", s, err)
		}
		return process_codec.Uint32Value(uint32(n)), nil
	case process_codec.Word:
		n, err := strconv.ParseUint(s, 0, 16)
		if err != nil {
			return process_codec.Value{}, process.InvalidRequest("bad word %q: %v", s, err)
		}
		return process_codec.Uint16Value(uint16(n)), nil
	case process_codec.Byte:
		n, err := strconv.ParseInt(s, 0, 8)
		if err != nil {
			return process_codec.Value{}, process.InvalidRequest("bad byte %q: %v", s, err)
		}
		return process_codec.Int8Value(int8(n)), nil
	case process_codec.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return process_codec.Value{}, process.InvalidRequest("bad bool %q: %v", s, err)
		}
		return process_codec.BoolValue(b), nil
	case process_codec.FixedText:
		if s == "" {
			return process_codec.Value{}, process.InvalidRequest("empty text")
		}
		return process_codec.TextValue(s), nil
	}
	return process_codec.Value{}, process.InvalidRequest("unknown semantic type %d", int(t))
}

// Encode returns the bytes v occupies in memory. Text is encoded without its
// NUL terminator so it also matches as a prefix.
func Encode(v process_codec.Value) ([]byte, error) {
	switch v.Type() {
	case process_codec.Int32:
		return binary.LittleEndian.AppendUint32(nil, v.Uint32()), nil
	case process_codec.Word:
		return binary.LittleEndian.AppendUint16(nil, v.Uint16()), nil
	case process_codec.Byte:
		return []byte{byte(v.Int8())}, nil
	case process_codec.Bool:
		if v.Bool() {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	case process_codec.FixedText:
		data, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(v.Text()))
		if err != nil {
			return nil, process.InvalidRequest("text %q is not ISO-8859-1: %v", v.Text(), err)
		}
		return data, nil
	}
	return nil, process.InvalidRequest("unknown semantic type %d", int(v.Type()))
}

// Search returns every aligned position in data, which was read from base,
// holding target
func Search(data []byte, base process.ProcessMemoryAddress, target process_codec.Value, options ...Option) ([]SearchResult, error) {
	s := &Searcher{
		MinAlignment: 1,
	}

	for _, opt := range options {
		opt(s)
	}

	if s.MinAlignment == 0 {
		return nil, process.InvalidRequest("alignment must be positive")
	}

	needle, err := Encode(target)
	if err != nil {
		return nil, err
	}

	var results []SearchResult
	for offset := uint(0); offset+uint(len(needle)) <= uint(len(data)); offset += s.MinAlignment {
		if !bytes.Equal(data[offset:offset+uint(len(needle))], needle) {
			continue
		}

		results = append(results, SearchResult{
			Address: base.Add(process.ProcessMemorySize(offset)),
			Offset:  process.ProcessMemorySize(offset),
		})
		if s.MaxResults > 0 && len(results) >= s.MaxResults {
			break
		}
	}

	return results, nil
}
