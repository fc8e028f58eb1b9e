//go:build linux

package process_linux

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"crusadermem/process"
)

// LinuxProcessFinder implements the process.ProcessFinder interface on top of procfs
type LinuxProcessFinder struct {
	root string
}

// NewProcessFinder creates a new LinuxProcessFinder reading /proc
func NewProcessFinder() *LinuxProcessFinder {
	return &LinuxProcessFinder{root: "/proc"}
}

// NewProcessFinderAt creates a LinuxProcessFinder reading a procfs mounted at root
func NewProcessFinderAt(root string) *LinuxProcessFinder {
	return &LinuxProcessFinder{root: root}
}

// FindProcessByName finds processes whose comm, exe basename or argv[0]
// basename equals name. The comparison is case-sensitive, like pidof.
// Results are sorted by PID.
func (f *LinuxProcessFinder) FindProcessByName(name string) ([]process.ProcessInfo, error) {
	if name == "" {
		return nil, fmt.Errorf("empty process name")
	}

	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.root, err)
	}

	selfPID := os.Getpid()
	var results []process.ProcessInfo

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		pid, err := strconv.Atoi(entry.Name())
		if err != nil || pid <= 0 || pid == selfPID {
			continue
		}

		info, ok := f.matchProcess(pid, name)
		if ok {
			results = append(results, info)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].PID < results[j].PID
	})

	return results, nil
}

// matchProcess checks a single /proc entry. Processes that vanish or deny
// access while we look at them simply don't match.
func (f *LinuxProcessFinder) matchProcess(pid int, name string) (process.ProcessInfo, bool) {
	procPath := filepath.Join(f.root, strconv.Itoa(pid))
	info := process.ProcessInfo{PID: process.ProcessID(pid), Name: name}

	// Resolve /proc/<pid>/exe symlink; may fail if zombie or permission
	info.Exe, _ = os.Readlink(filepath.Join(procPath, "exe"))
	info.PPID = readPPID(procPath)

	comm, _ := os.ReadFile(filepath.Join(procPath, "comm"))
	if string(bytes.TrimRight(comm, "\r\n\t ")) == name {
		return info, true
	}

	if info.Exe != "" && filepath.Base(info.Exe) == name {
		return info, true
	}

	// Programs hosted by wine keep their Windows path in argv[0]
	cmdline, _ := os.ReadFile(filepath.Join(procPath, "cmdline"))
	if argv0, _, _ := bytes.Cut(cmdline, []byte{0}); len(argv0) > 0 {
		if windowsBase(string(argv0)) == name {
			return info, true
		}
	}

	return info, false
}

// windowsBase returns the last element of a path using either separator
func windowsBase(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}

func readPPID(procPath string) process.ProcessID {
	status, err := os.ReadFile(filepath.Join(procPath, "status"))
	if err != nil {
		return 0
	}

	for _, line := range strings.Split(string(status), "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok || strings.TrimSpace(key) != "PPid" {
			continue
		}
		if ppid, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return process.ProcessID(ppid)
		}
	}
	return 0
}
