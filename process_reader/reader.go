// Package process_reader reads typed values out of a named process.
//
// Each call locates the process, opens it, performs its transfer, and closes
// it again before returning. Nothing is cached and nothing is retried.
package process_reader

import (
	"fmt"

	"crusadermem/process"
	"crusadermem/process_codec"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

// Reader reads process memory through a process.ProcessHelper backend.
// It holds no per-call state and is safe for concurrent use.
type Reader struct {
	helper process.ProcessHelper
	log    *logger.Logger
}

// New creates a Reader on top of helper
func New(helper process.ProcessHelper) *Reader {
	return &Reader{
		helper: helper,
		log:    logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "reader")),
	}
}

// Read reads one value of type t at the absolute address addr
func (r *Reader) Read(name string, addr process.ProcessMemoryAddress, t process_codec.SemanticType) (process_codec.Value, error) {
	if !t.Valid() {
		return process_codec.Value{}, process.InvalidRequest("unknown semantic type %d", int(t))
	}

	data, err := r.ReadSpan(name, addr, t.Width())
	if err != nil {
		return process_codec.Value{}, err
	}

	return process_codec.Decode(t, data)
}

// ReadSpan reads size raw bytes at addr in a single transfer
func (r *Reader) ReadSpan(name string, addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	if size == 0 {
		return nil, process.InvalidRequest("span size must be positive")
	}
	if err := checkSpan(addr, size); err != nil {
		return nil, err
	}

	var data []byte
	err := process.WithProcessByName(r.helper, name, func(proc process.Process) error {
		var err error
		data, err = readExact(proc, name, addr, size)
		return err
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// checkSpan rejects spans that run past the end of the address space
func checkSpan(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) error {
	if uint64(size) > ^uint64(0)-uint64(addr) {
		return process.InvalidRequest("span of %d bytes at %s overflows the address space", uint(size), addr.ToString())
	}
	return nil
}

// readExact performs one transfer and turns failures and short reads into ErrMemoryReadFailed
func readExact(proc process.Process, name string, addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	data, err := proc.ReadMemory(addr, size)
	if err != nil {
		return nil, process.ReadFailed(name, addr, err)
	}
	if process.ProcessMemorySize(len(data)) < size {
		return nil, process.ReadFailed(name, addr, fmt.Errorf("short read: %d of %d bytes", len(data), size))
	}
	return data, nil
}
