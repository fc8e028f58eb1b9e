//go:build windows

package process_windows

import (
	"errors"
	"fmt"
	"sort"
	"unsafe"

	"crusadermem/process"

	"golang.org/x/sys/windows"
)

// WindowsProcessFinder implements the process.ProcessFinder interface using a Toolhelp32 snapshot
type WindowsProcessFinder struct{}

// NewProcessFinder creates a new WindowsProcessFinder
func NewProcessFinder() *WindowsProcessFinder {
	return &WindowsProcessFinder{}
}

// FindProcessByName finds processes whose executable name equals name, sorted by PID
func (f *WindowsProcessFinder) FindProcessByName(name string) ([]process.ProcessInfo, error) {
	if name == "" {
		return nil, fmt.Errorf("empty process name")
	}

	snapshot, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return nil, fmt.Errorf("CreateToolhelp32Snapshot failed: %w", err)
	}
	defer windows.CloseHandle(snapshot)

	var entry windows.ProcessEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))

	var results []process.ProcessInfo
	for err = windows.Process32First(snapshot, &entry); err == nil; err = windows.Process32Next(snapshot, &entry) {
		exe := windows.UTF16ToString(entry.ExeFile[:])
		if exe != name {
			continue
		}
		results = append(results, process.ProcessInfo{
			PID:  process.ProcessID(entry.ProcessID),
			PPID: process.ProcessID(entry.ParentProcessID),
			Name: exe,
			Exe:  exe,
		})
	}
	if !errors.Is(err, windows.ERROR_NO_MORE_FILES) {
		return nil, fmt.Errorf("process enumeration failed: %w", err)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].PID < results[j].PID
	})

	return results, nil
}
