//go:build linux

package process_linux

import (
	"github.com/rythin-sr/LiveSplit.Dishonored/process"
)

// LinuxProcessHelper implements the process.ProcessHelper interface
type LinuxProcessHelper struct {
	process.ProcessFinder
}

// NewHelper creates a new LinuxProcessHelper
func NewHelper() process.ProcessHelper {
	return &LinuxProcessHelper{
		ProcessFinder: NewProcessFinder(),
	}
}

// NewWithPID creates a new Process instance and opens it with the given PID
func (h *LinuxProcessHelper) NewWithPID(pid process.ProcessID) (process.Process, error) {
	return NewWithPID(pid)
}
