//go:build linux

package process_linux

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rythin-sr/LiveSplit.Dishonored/process"
)

// LinuxProcessFinder implements the process.ProcessFinder interface
type LinuxProcessFinder struct{}

// NewProcessFinder creates a new LinuxProcessFinder
func NewProcessFinder() process.ProcessFinder {
	return &LinuxProcessFinder{}
}

// FindProcessByPID finds a process by its PID
func (f *LinuxProcessFinder) FindProcessByPID(pid process.ProcessID) (*process.ProcessInfo, error) {
	procPath := fmt.Sprintf("/proc/%d", pid)

	if _, err := os.Stat(procPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("process with PID %d does not exist", pid)
	}

	return getProcessInfo(pid)
}

// FindProcessByName finds processes whose comm, exe basename or first command line
// argument matches name, see process.NormalizeName. Results are ordered by PID.
func (f *LinuxProcessFinder) FindProcessByName(name string) ([]process.ProcessInfo, error) {
	want := process.NormalizeName(name)
	if want == "" {
		return nil, fmt.Errorf("empty process name")
	}

	entries, err := os.ReadDir("/proc")
	if err != nil {
		return nil, fmt.Errorf("failed to read /proc: %w", err)
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

		info, err := getProcessInfo(process.ProcessID(pid))
		if err != nil {
			// Process may have terminated while we were reading
			continue
		}

		if process.NormalizeName(info.Name) == want || (info.Exe != "" && process.NormalizeName(info.Exe) == want) {
			results = append(results, *info)
		}
	}

	return results, nil
}

// getProcessInfo reads name and executable of pid. Wine hosted programs report
// the loader as /proc/<pid>/exe, the Windows path shows up as argv[0].
func getProcessInfo(pid process.ProcessID) (*process.ProcessInfo, error) {
	procPath := fmt.Sprintf("/proc/%d", pid)

	nameBytes, err := os.ReadFile(filepath.Join(procPath, "comm"))
	if err != nil {
		return nil, fmt.Errorf("failed to read process name: %w", err)
	}

	exe, err := os.Readlink(filepath.Join(procPath, "exe"))
	if err != nil {
		// Kernel threads and foreign users' processes have no readable exe
		exe = ""
	}

	if cmdline, err := os.ReadFile(filepath.Join(procPath, "cmdline")); err == nil && len(cmdline) > 0 {
		argv0 := cmdline
		if i := bytes.IndexByte(cmdline, 0); i >= 0 {
			argv0 = cmdline[:i]
		}
		if bytes.HasSuffix(bytes.ToLower(argv0), []byte(".exe")) {
			exe = string(argv0)
		}
	}

	return &process.ProcessInfo{
		PID:  pid,
		Name: string(bytesTrimNL(nameBytes)),
		Exe:  exe,
	}, nil
}
