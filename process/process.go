// Package process provides interfaces and types for reading the memory of another process
package process

import "errors"

// Types live in:
// - types.go: ProcessID, ProcessInfo, ModuleInfo
// - process_state.go: ProcessState constants
// - memory_types.go: ProcessMemoryAddress, ProcessMemorySize
// - process_interface.go: Process interface
// - process_finder.go: ProcessFinder interface
// - process_helper.go: ProcessHelper interface
// - path.go: DeepPointer and the typed readers built on ReadMemory

var (
	// ErrAddressNotMapped is returned when a memory address is not found within any mapped region of a process.
	ErrAddressNotMapped = errors.New("address not mapped")

	// ErrProcessNotOpen is returned when an operation requiring an open process is attempted
	// before the process has been successfully opened or after it has been closed.
	ErrProcessNotOpen = errors.New("process not open")

	// ErrInvalidPointer is returned when a pointer chain walks through a null pointer.
	ErrInvalidPointer = errors.New("invalid pointer read")

	// ErrModuleNotFound is returned when a named module is not loaded in the process.
	ErrModuleNotFound = errors.New("module not found")

	// ErrProcessExited is returned when the target process is gone.
	ErrProcessExited = errors.New("process exited")
)
