package process_reader

import (
	"errors"
	"testing"

	"crusadermem/process"
	"crusadermem/process_blob"
	"crusadermem/process_codec"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	gameName = "Stronghold_Crusader_Extreme.exe"
	base     = process.ProcessMemoryAddress(0x1000)
)

func newReader(t *testing.T, memory []byte) (*Reader, *process_blob.Backend, *process_blob.ProcessDump) {
	t.Helper()
	dump := process_blob.NewProcessDump(1234, gameName)
	require.NoError(t, dump.AddRegion(base, memory))
	backend := process_blob.NewBackend(dump)
	return New(backend), backend, dump
}

func offsets(o ...process.ProcessMemorySize) []process.ProcessMemorySize {
	return o
}

func TestReadChunk_PreservesCallerOrder(t *testing.T) {
	memory := make([]byte, 16)
	memory[0], memory[1] = 0x05, 0x00
	memory[4], memory[5] = 0x09, 0x00
	memory[8], memory[9] = 0x02, 0x00
	reader, backend, _ := newReader(t, memory)

	values, err := reader.ReadChunk(gameName, base, offsets(8, 0, 4), process_codec.Word)
	require.NoError(t, err)
	require.Len(t, values, 3)
	assert.Equal(t, uint16(2), values[0].Uint16())
	assert.Equal(t, uint16(5), values[1].Uint16())
	assert.Equal(t, uint16(9), values[2].Uint16())

	assert.Equal(t, []process.ProcessMemorySize{10}, backend.Reads())
}

func TestReadChunk_SingleMinimalTransfer(t *testing.T) {
	memory := make([]byte, 32)
	reader, backend, _ := newReader(t, memory)

	types := []process_codec.SemanticType{process_codec.Word, process_codec.Word, process_codec.Int32}
	values, err := reader.ReadChunkTypes(gameName, base, offsets(0, 4, 8), types)
	require.NoError(t, err)
	require.Len(t, values, 3)

	assert.Equal(t, []process.ProcessMemorySize{12}, backend.Reads(), "one read of 8 + 4 bytes")
	assert.Equal(t, 1, backend.Opens())
	assert.Equal(t, 0, backend.OpenHandles())
}

func TestReadChunkTypes_MixedTypes(t *testing.T) {
	memory := make([]byte, 0x200)
	copy(memory[0x10:], "Sultan\x00")
	memory[0x00] = 0xFE                                         // byte
	memory[0x01] = 0x01                                         // bool
	memory[0x04], memory[0x05], memory[0x06] = 0x4E, 0x61, 0xBC // int
	reader, backend, _ := newReader(t, memory)

	types := []process_codec.SemanticType{
		process_codec.Int32, process_codec.FixedText, process_codec.Byte, process_codec.Bool,
	}
	values, err := reader.ReadChunkTypes(gameName, base, offsets(4, 0x10, 0, 1), types)
	require.NoError(t, err)

	assert.Equal(t, uint32(0xBC614E), values[0].Uint32())
	assert.Equal(t, "Sultan", values[1].Text())
	assert.Equal(t, int8(-2), values[2].Int8())
	assert.True(t, values[3].Bool())
	assert.Equal(t, []process.ProcessMemorySize{0x110}, backend.Reads())
}

func TestReadChunk_DuplicateOffsets(t *testing.T) {
	memory := []byte{0x01, 0x02, 0x03, 0x04}
	reader, _, _ := newReader(t, memory)

	types := []process_codec.SemanticType{process_codec.Int32, process_codec.Word, process_codec.Byte}
	values, err := reader.ReadChunkTypes(gameName, base, offsets(0, 0, 0), types)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x04030201), values[0].Uint32())
	assert.Equal(t, uint16(0x0201), values[1].Uint16())
	assert.Equal(t, int8(1), values[2].Int8())
}

func TestReadChunk_InvalidRequests(t *testing.T) {
	reader, backend, _ := newReader(t, make([]byte, 16))

	_, err := reader.ReadChunk(gameName, base, nil, process_codec.Word)
	assert.ErrorIs(t, err, process.ErrInvalidRequest)

	_, err = reader.ReadChunkTypes(gameName, base, offsets(0, 4), []process_codec.SemanticType{process_codec.Word})
	assert.ErrorIs(t, err, process.ErrInvalidRequest)

	_, err = reader.ReadChunk(gameName, base, offsets(0), process_codec.SemanticType(42))
	assert.ErrorIs(t, err, process.ErrInvalidRequest)

	assert.Equal(t, 0, backend.Opens(), "invalid requests never touch the process")
}

func TestReadChunk_OverflowingOffsets(t *testing.T) {
	reader, backend, _ := newReader(t, make([]byte, 16))
	maxSize := ^process.ProcessMemorySize(0)

	assert.NotPanics(t, func() {
		_, err := reader.ReadChunk(gameName, base, offsets(0, maxSize-1), process_codec.Word)
		assert.ErrorIs(t, err, process.ErrInvalidRequest)

		_, err = reader.ReadChunk(gameName, base, offsets(maxSize-2), process_codec.Word)
		assert.ErrorIs(t, err, process.ErrInvalidRequest, "fits in an offset but not past base")

		_, err = reader.ReadSpan(gameName, base, maxSize)
		assert.ErrorIs(t, err, process.ErrInvalidRequest)
	})

	assert.Equal(t, 0, backend.Opens())
}

func TestReadChunk_OversizedSpan(t *testing.T) {
	reader, backend, _ := newReader(t, make([]byte, 16))

	_, err := reader.ReadChunk(gameName, base, offsets(0, 1<<30), process_codec.Word)
	assert.ErrorIs(t, err, process.ErrMemoryReadFailed)
	assert.ErrorIs(t, err, process.ErrReadTooLarge)
	assert.Equal(t, 0, backend.OpenHandles())
}

func TestDecodeFields_ShortSpan(t *testing.T) {
	fields, err := pairRequests(offsets(0, 4), []process_codec.SemanticType{process_codec.Word, process_codec.Int32})
	require.NoError(t, err)

	_, err = decodeFields(fields, make([]byte, 6))
	assert.ErrorIs(t, err, process.ErrInvalidRequest)
}

func TestReadChunk_ProcessNotFound(t *testing.T) {
	reader, backend, _ := newReader(t, make([]byte, 16))

	_, err := reader.ReadChunk("missing.exe", base, offsets(0), process_codec.Word)
	assert.ErrorIs(t, err, process.ErrProcessNotFound)
	assert.Equal(t, 0, backend.OpenHandles())
}

func TestReadChunk_OpenFailed(t *testing.T) {
	reader, backend, _ := newReader(t, make([]byte, 16))
	backend.FailOpen(errors.New("access denied"))

	_, err := reader.ReadChunk(gameName, base, offsets(0), process_codec.Word)
	assert.ErrorIs(t, err, process.ErrProcessOpenFailed)
	assert.Equal(t, 0, backend.OpenHandles())
}

func TestReadChunk_ReadFailedIsAllOrNothing(t *testing.T) {
	reader, backend, _ := newReader(t, make([]byte, 16))

	// The span runs past the end of the mapped region
	values, err := reader.ReadChunk(gameName, base, offsets(0, 15), process_codec.Word)
	assert.ErrorIs(t, err, process.ErrMemoryReadFailed)
	assert.Nil(t, values)
	assert.Equal(t, 0, backend.OpenHandles())

	var readErr *process.MemoryReadError
	require.ErrorAs(t, err, &readErr)
	assert.Equal(t, base, readErr.Address)
	assert.True(t, readErr.HasAddress)
}

func TestRead_SingleValue(t *testing.T) {
	memory := make([]byte, 8)
	memory[4] = 0xCD
	memory[5] = 0x04
	reader, backend, _ := newReader(t, memory)

	v, err := reader.Read(gameName, base+4, process_codec.Word)
	require.NoError(t, err)
	assert.Equal(t, uint16(1229), v.Uint16())
	assert.Equal(t, []process.ProcessMemorySize{2}, backend.Reads())
	assert.Equal(t, 0, backend.OpenHandles())
}

func TestRead_Failures(t *testing.T) {
	reader, backend, _ := newReader(t, make([]byte, 8))

	_, err := reader.Read("missing.exe", base, process_codec.Int32)
	assert.ErrorIs(t, err, process.ErrProcessNotFound)

	_, err = reader.Read(gameName, base+6, process_codec.Int32)
	assert.ErrorIs(t, err, process.ErrMemoryReadFailed)

	backend.FailRead(errors.New("process exited"))
	_, err = reader.Read(gameName, base, process_codec.Int32)
	assert.ErrorIs(t, err, process.ErrMemoryReadFailed)

	_, err = reader.Read(gameName, base, process_codec.SemanticType(-1))
	assert.ErrorIs(t, err, process.ErrInvalidRequest)

	assert.Equal(t, 0, backend.OpenHandles())
}

// shortProcess returns fewer bytes than asked for without reporting an error
type shortProcess struct{ process.Process }

func (s shortProcess) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	return make([]byte, size/2), nil
}

func TestReadExact_ShortRead(t *testing.T) {
	_, err := readExact(shortProcess{}, gameName, base, 4)
	assert.ErrorIs(t, err, process.ErrMemoryReadFailed)
}

func TestReadSpan(t *testing.T) {
	reader, _, dump := newReader(t, []byte{1, 2, 3, 4, 5})
	require.NoError(t, dump.WriteMemory(base+1, []byte{9}))

	data, err := reader.ReadSpan(gameName, base, 5)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 9, 3, 4, 5}, data)

	_, err = reader.ReadSpan(gameName, base, 0)
	assert.ErrorIs(t, err, process.ErrInvalidRequest)
}

func TestSpanLength(t *testing.T) {
	fields, err := pairRequests(offsets(0, 4, 8), []process_codec.SemanticType{
		process_codec.Word, process_codec.Word, process_codec.Int32,
	})
	require.NoError(t, err)
	assert.Equal(t, process.ProcessMemorySize(12), spanLength(fields))

	// A wide field at a lower offset extends the span past the last field
	fields, err = pairRequests(offsets(4, 0), []process_codec.SemanticType{
		process_codec.Word, process_codec.FixedText,
	})
	require.NoError(t, err)
	assert.Equal(t, process.ProcessMemorySize(256), spanLength(fields))

	// Sorting for the span never reorders the request itself
	assert.Equal(t, 0, fields[0].index)
	assert.Equal(t, process.ProcessMemorySize(4), fields[0].offset)
}

func TestReadChunk_Concurrent(t *testing.T) {
	memory := make([]byte, 64)
	for i := range memory {
		memory[i] = byte(i)
	}
	reader, backend, _ := newReader(t, memory)

	done := make(chan error)
	for i := 0; i < 8; i++ {
		go func() {
			values, err := reader.ReadChunk(gameName, base, offsets(60, 0), process_codec.Byte)
			if err == nil && (values[0].Int8() != 60 || values[1].Int8() != 0) {
				err = errors.New("wrong values")
			}
			done <- err
		}()
	}
	for i := 0; i < 8; i++ {
		assert.NoError(t, <-done)
	}
	assert.Equal(t, 0, backend.OpenHandles())
	assert.Equal(t, 8, backend.Opens())
}
