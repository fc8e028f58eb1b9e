package process_test

import (
	"errors"
	"testing"

	"crusadermem/process"
	"crusadermem/process_blob"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T) *process_blob.Backend {
	t.Helper()
	dump := process_blob.NewProcessDump(100, "game.exe")
	require.NoError(t, dump.AddRegion(0x400000, []byte{1, 2, 3, 4}))
	return process_blob.NewBackend(dump)
}

func TestWithProcessByName_ClosesOnEveryPath(t *testing.T) {
	backend := newBackend(t)
	failure := errors.New("decode failed")

	err := process.WithProcessByName(backend, "game.exe", func(p process.Process) error {
		assert.Equal(t, 1, backend.OpenHandles())
		_, err := p.ReadMemory(0x400000, 4)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 0, backend.OpenHandles())

	err = process.WithProcessByName(backend, "game.exe", func(p process.Process) error {
		return failure
	})
	assert.ErrorIs(t, err, failure)
	assert.Equal(t, 0, backend.OpenHandles())

	assert.Panics(t, func() {
		_ = process.WithProcessByName(backend, "game.exe", func(p process.Process) error {
			panic("decoder bug")
		})
	})
	assert.Equal(t, 0, backend.OpenHandles())
	assert.Equal(t, 3, backend.Opens())
}

func TestWithProcessByName_NotFound(t *testing.T) {
	backend := newBackend(t)
	called := false

	err := process.WithProcessByName(backend, "missing.exe", func(p process.Process) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, process.ErrProcessNotFound)
	assert.False(t, called)
	assert.Equal(t, 0, backend.OpenHandles())
	assert.Equal(t, 0, backend.Opens())

	var readErr *process.MemoryReadError
	require.ErrorAs(t, err, &readErr)
	assert.Equal(t, "missing.exe", readErr.Process)
	assert.False(t, readErr.HasAddress)
}

func TestOpenProcessByName_EnumerationFailure(t *testing.T) {
	backend := newBackend(t)
	backend.FailFind(errors.New("permission denied"))

	_, err := process.OpenProcessByName(backend, "game.exe")
	assert.ErrorIs(t, err, process.ErrProcessNotFound)
}

func TestMemoryReadError_Message(t *testing.T) {
	err := process.ReadFailed("game.exe", 0x24BA938, errors.New("partial read"))
	assert.Equal(t, "process 'game.exe'; address 0x24BA938; failed to read memory: partial read", err.Error())
	assert.ErrorIs(t, err, process.ErrMemoryReadFailed)
	assert.NotErrorIs(t, err, process.ErrInvalidRequest)

	err = process.InvalidRequest("offsets must not be empty")
	assert.Equal(t, "invalid request: offsets must not be empty", err.Error())
}

func TestCheckReadSize(t *testing.T) {
	assert.NoError(t, process.CheckReadSize(process.MaxReadSize))
	assert.ErrorIs(t, process.CheckReadSize(process.MaxReadSize+1), process.ErrReadTooLarge)
}
