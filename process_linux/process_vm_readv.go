//go:build linux

package process_linux

import (
	"fmt"

	"crusadermem/process"

	"golang.org/x/sys/unix"
)

// readRemote copies size bytes at remoteAddr of pid into a new buffer with a
// single process_vm_readv call. A partial transfer is an error.
func readRemote(pid process.ProcessID, remoteAddr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	buf := make([]byte, size)

	local := []unix.Iovec{{Base: &buf[0]}}
	local[0].SetLen(len(buf))
	remote := []unix.RemoteIovec{{Base: uintptr(remoteAddr), Len: len(buf)}}

	n, err := unix.ProcessVMReadv(int(pid), local, remote, 0)
	if err != nil {
		return nil, err
	}
	if n != len(buf) {
		return nil, fmt.Errorf("partial read: %d of %d bytes", n, len(buf))
	}

	return buf, nil
}
