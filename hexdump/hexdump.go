// Package hexdump renders raw process memory, optionally marking the byte
// ranges that belong to requested fields.
package hexdump

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/Moonlight-Companies/gologger/coloransi"
)

// Range marks Size bytes starting Offset bytes into the dump
type Range struct {
	Offset uint64
	Size   uint64
}

func (r Range) contains(offset uint64) bool {
	return offset >= r.Offset && offset-r.Offset < r.Size
}

// HexDumpOptions defines options for customizing the hexdump output
type HexDumpOptions struct {
	// BytesPerLine defines the number of bytes to display per line
	BytesPerLine int

	// StartAddress is printed as the address of the first byte
	StartAddress uint64

	// Highlight lists byte ranges to mark
	Highlight []Range

	// Color marks highlighted bytes with ANSI colors; otherwise they are bracketed
	Color bool

	// MaxLines is the maximum number of lines to show (0 for no limit)
	MaxLines int
}

// DefaultOptions returns the default hexdump options
func DefaultOptions() HexDumpOptions {
	return HexDumpOptions{
		BytesPerLine: 16,
		Color:        true,
	}
}

// Dump creates a hex dump of the given data with specified options
func Dump(data []byte, options HexDumpOptions) string {
	var buffer bytes.Buffer
	DumpToWriter(&buffer, data, options)
	return buffer.String()
}

// DumpToWriter writes a hex dump of the given data to the specified writer
func DumpToWriter(writer io.Writer, data []byte, options HexDumpOptions) {
	if options.BytesPerLine <= 0 {
		options.BytesPerLine = 16
	}

	lineCount := 0
	for offset := 0; offset < len(data); offset += options.BytesPerLine {
		if options.MaxLines > 0 && lineCount >= options.MaxLines {
			fmt.Fprintf(writer, "... %d more bytes\n", len(data)-offset)
			break
		}

		end := min(offset+options.BytesPerLine, len(data))
		formatLine(writer, data[offset:end], uint64(offset), options)
		lineCount++
	}
}

// formatLine writes one line. Without color, each highlighted range is
// bracketed: "[" before its first byte, "]" after its last, and "|" where one
// range ends and the next begins.
func formatLine(writer io.Writer, data []byte, offset uint64, options HexDumpOptions) {
	var hexPart, asciiPart strings.Builder

	prev := -1
	for i, b := range data {
		cur := rangeAt(offset+uint64(i), options.Highlight)

		cell := fmt.Sprintf("%02x", b)
		char := "."
		if b >= 0x20 && b < 0x7f {
			char = string(rune(b))
		}

		if cur >= 0 && options.Color {
			cell = coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, cell)
			char = coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, char)
		}

		hexPart.WriteString(separator(prev, cur, options.Color) + cell)
		asciiPart.WriteString(char)
		prev = cur
	}

	hexPart.WriteString(separator(prev, -1, options.Color))
	hexPart.WriteString(strings.Repeat("   ", options.BytesPerLine-len(data)))

	fmt.Fprintf(writer, "%016x %s |%s|\n", options.StartAddress+offset, hexPart.String(), asciiPart.String())
}

// separator is the column written between a byte in range prev and one in
// range cur (-1 for none)
func separator(prev, cur int, color bool) string {
	switch {
	case color || prev == cur:
		return " "
	case prev < 0:
		return "["
	case cur < 0:
		return "]"
	}
	return "|"
}

// rangeAt returns the index of the first range holding offset, or -1
func rangeAt(offset uint64, ranges []Range) int {
	for i, r := range ranges {
		if r.contains(offset) {
			return i
		}
	}
	return -1
}
