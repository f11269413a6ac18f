package process

// ProcessHelper bundles the platform specific process constructors with a finder
type ProcessHelper interface {
	// NewWithPID creates a new Process instance and opens it with the given PID
	NewWithPID(pid ProcessID) (Process, error)

	ProcessFinder
}
