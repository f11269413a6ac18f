package process

// ProcessState represents the binding state of a process handle
type ProcessState string

const (
	ProcessRunning ProcessState = "R" // Open and alive
	ProcessExited  ProcessState = "X" // Exited, reads will fail
	ProcessClosed  ProcessState = "C" // Handle released or never opened
)
