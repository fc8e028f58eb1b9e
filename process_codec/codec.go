// Package process_codec decodes raw process memory into typed values.
//
// Every SemanticType has a fixed byte width and a decode function, held in a
// static dispatch table. Decoding never shares buffers between calls.
package process_codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	"crusadermem/process"

	"golang.org/x/text/encoding/charmap"
)

// SemanticType identifies how a field in process memory is laid out
type SemanticType int

const (
	// Int32 is a 4-byte little-endian unsigned integer
	Int32 SemanticType = iota
	// Word is a 2-byte little-endian unsigned integer
	Word
	// Byte is a signed 8-bit integer
	Byte
	// Bool is a single byte, true when nonzero
	Bool
	// FixedText is a 256-byte, NUL-terminated ISO-8859-1 buffer.
	//
	// Game text is single-byte Latin-1. ISO-8859-1 maps each of the 256 byte
	// values to exactly one rune, so decoding cannot fail and every byte
	// round-trips. A UTF-8 decode that drops invalid sequences would silently
	// mangle names containing high-byte characters.
	FixedText
)

// FixedTextSize is the width of a FixedText field
const FixedTextSize = 256

type codec struct {
	name   string
	width  process.ProcessMemorySize
	decode func(data []byte) Value
}

var codecs = [...]codec{
	Int32: {"int", 4, func(data []byte) Value {
		return Value{typ: Int32, num: binary.LittleEndian.Uint32(data)}
	}},
	Word: {"word", 2, func(data []byte) Value {
		return Value{typ: Word, num: uint32(binary.LittleEndian.Uint16(data))}
	}},
	Byte: {"byte", 1, func(data []byte) Value {
		return Value{typ: Byte, num: uint32(data[0])}
	}},
	Bool: {"bool", 1, func(data []byte) Value {
		var b uint32
		if data[0] != 0 {
			b = 1
		}
		return Value{typ: Bool, num: b}
	}},
	FixedText: {"string", FixedTextSize, decodeText},
}

func decodeText(data []byte) Value {
	raw := data[:FixedTextSize]
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		raw = raw[:i]
	}
	// ISO-8859-1 has no invalid input; the decoder cannot fail
	text, _ := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	return Value{typ: FixedText, text: string(text)}
}

// Valid reports whether t is a known SemanticType
func (t SemanticType) Valid() bool {
	return t >= 0 && int(t) < len(codecs)
}

// Width returns the number of bytes a field of type t occupies, or 0 for an unknown type
func (t SemanticType) Width() process.ProcessMemorySize {
	if !t.Valid() {
		return 0
	}
	return codecs[t].width
}

func (t SemanticType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("SemanticType(%d)", int(t))
	}
	return codecs[t].name
}

// Decode decodes the first t.Width() bytes of data.
// It fails with process.ErrInvalidRequest when data is too short or t is unknown.
func Decode(t SemanticType, data []byte) (Value, error) {
	if !t.Valid() {
		return Value{}, process.InvalidRequest("unknown semantic type %d", int(t))
	}
	c := codecs[t]
	if process.ProcessMemorySize(len(data)) < c.width {
		return Value{}, process.InvalidRequest("%s needs %d bytes, got %d", c.name, c.width, len(data))
	}
	return c.decode(data), nil
}

// ParseType maps a configuration type tag onto a SemanticType.
// Accepted tags are int, word, byte, bool, boolean and string, in any case.
func ParseType(tag string) (SemanticType, error) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "int":
		return Int32, nil
	case "word":
		return Word, nil
	case "byte":
		return Byte, nil
	case "bool", "boolean":
		return Bool, nil
	case "string":
		return FixedText, nil
	}
	return 0, process.InvalidRequest("unknown type tag %q", tag)
}

// UnmarshalText lets configuration formats carry type tags directly
func (t *SemanticType) UnmarshalText(text []byte) error {
	parsed, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t SemanticType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, process.InvalidRequest("unknown semantic type %d", int(t))
	}
	return []byte(t.String()), nil
}
