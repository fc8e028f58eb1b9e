package process

// Process is an open, OS-level capability to read another process's memory.
// A Process is acquired for the extent of a single read operation and must be
// closed before that operation returns.
type Process interface {
	// GetPID returns the process ID
	GetPID() ProcessID

	// ReadMemory reads size bytes from the process at the specified address.
	// A short transfer is reported as an error.
	ReadMemory(addr ProcessMemoryAddress, size ProcessMemorySize) ([]byte, error)

	// Close releases the capability
	Close() error
}

// ProcessFinder discovers running processes
type ProcessFinder interface {
	// FindProcessByName finds processes by their name (exact match), lowest PID first
	FindProcessByName(name string) ([]ProcessInfo, error)
}

// ProcessHelper is a platform backend: it can locate processes and open them.
type ProcessHelper interface {
	ProcessFinder

	// NewWithPID opens the process with the given PID
	NewWithPID(pid ProcessID) (Process, error)
}
