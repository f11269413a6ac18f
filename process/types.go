package process

import (
	"path/filepath"
	"strings"
)

// ProcessID represents a unique identifier for a process
type ProcessID int

// ProcessInfo contains basic information about a process
type ProcessInfo struct {
	PID  ProcessID // Process ID
	Name string    // Process name (comm on Linux, image name on Windows)
	Exe  string    // Path to the executable, empty when unknown
}

// ModuleInfo describes an image (executable or library) mapped into a process
type ModuleInfo struct {
	Name string               // Base file name, e.g. "binkw32.dll"
	Path string               // Full path as reported by the OS, may be empty
	Base ProcessMemoryAddress // Load address of the image
	Size ProcessMemorySize    // Size of the image in memory (SizeOfImage)
}

// End returns the first address past the module image
func (m ModuleInfo) End() ProcessMemoryAddress {
	return m.Base.Offset(m.Size)
}

// NormalizeName folds a process or module name for comparison: lower case,
// directory and a trailing ".exe" removed. "C:\Games\Dishonored.exe" and
// "dishonored" normalize to the same value.
func NormalizeName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.ToLower(filepath.Base(name))
	return strings.TrimSuffix(name, ".exe")
}

// FindModule looks a module up by name, case-insensitively.
func FindModule(modules []ModuleInfo, name string) (ModuleInfo, bool) {
	for _, m := range modules {
		if strings.EqualFold(m.Name, name) {
			return m, true
		}
	}
	return ModuleInfo{}, false
}
