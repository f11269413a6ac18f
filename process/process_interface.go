package process

import (
	"github.com/rythin-sr/LiveSplit.Dishonored/process/memory_map"
)

// Process is the interface that defines operations for interacting with a system process
type Process interface {
	// Open opens a process with the given PID for memory operations
	Open(pid ProcessID) error

	// Close closes the process and releases resources
	Close() error

	// GetPID returns the process ID
	GetPID() ProcessID

	// State reports whether the process is still alive
	State() ProcessState

	// PointerSize returns the width of a pointer in the target process (4 or 8)
	PointerSize() ProcessMemorySize

	// UpdateMemoryMap refreshes the memory map and module table for the process
	UpdateMemoryMap() error

	// IsValidAddress checks if the given memory address is valid and readable
	IsValidAddress(addr ProcessMemoryAddress) bool

	// GetMemoryMap returns a copy of the current memory map
	GetMemoryMap() ([]memory_map.MemoryMapItem, error)

	// Modules returns the images loaded in the process, main executable first
	Modules() ([]ModuleInfo, error)

	// ReadMemory reads memory from the process at the specified address
	ReadMemory(addr ProcessMemoryAddress, size ProcessMemorySize) ([]byte, error)
}

// HasExited is a convenience over Process.State.
func HasExited(proc Process) bool {
	return proc == nil || proc.State() != ProcessRunning
}

// MainModule returns the main executable image of proc.
func MainModule(proc Process) (ModuleInfo, error) {
	modules, err := proc.Modules()
	if err != nil {
		return ModuleInfo{}, err
	}
	if len(modules) == 0 {
		return ModuleInfo{}, ErrModuleNotFound
	}
	return modules[0], nil
}

// Module returns the image called name loaded in proc.
func Module(proc Process, name string) (ModuleInfo, error) {
	modules, err := proc.Modules()
	if err != nil {
		return ModuleInfo{}, err
	}
	m, ok := FindModule(modules, name)
	if !ok {
		return ModuleInfo{}, ErrModuleNotFound
	}
	return m, nil
}
