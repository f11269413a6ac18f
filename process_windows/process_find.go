//go:build windows

package process_windows

import (
	"errors"
	"fmt"
	"sort"
	"unsafe"

	"github.com/rythin-sr/LiveSplit.Dishonored/process"

	"golang.org/x/sys/windows"
)

// WindowsProcessFinder implements the process.ProcessFinder interface with Toolhelp32 snapshots
type WindowsProcessFinder struct{}

// NewProcessFinder creates a new WindowsProcessFinder
func NewProcessFinder() process.ProcessFinder {
	return &WindowsProcessFinder{}
}

func (f *WindowsProcessFinder) FindProcessByPID(pid process.ProcessID) (*process.ProcessInfo, error) {
	all, err := listProcesses()
	if err != nil {
		return nil, err
	}
	for _, info := range all {
		if info.PID == pid {
			return &info, nil
		}
	}
	return nil, fmt.Errorf("process with PID %d does not exist", pid)
}

func (f *WindowsProcessFinder) FindProcessByName(name string) ([]process.ProcessInfo, error) {
	want := process.NormalizeName(name)
	if want == "" {
		return nil, fmt.Errorf("empty process name")
	}

	all, err := listProcesses()
	if err != nil {
		return nil, err
	}

	var results []process.ProcessInfo
	for _, info := range all {
		if process.NormalizeName(info.Name) == want {
			results = append(results, info)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].PID < results[j].PID })
	return results, nil
}

func listProcesses() ([]process.ProcessInfo, error) {
	snapshot, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return nil, fmt.Errorf("CreateToolhelp32Snapshot failed: %w", err)
	}
	defer windows.CloseHandle(snapshot)

	var pe windows.ProcessEntry32
	pe.Size = uint32(unsafe.Sizeof(pe))
	if err := windows.Process32First(snapshot, &pe); err != nil {
		return nil, fmt.Errorf("Process32First failed: %w", err)
	}

	var results []process.ProcessInfo
	for {
		exe := windows.UTF16ToString(pe.ExeFile[:])
		results = append(results, process.ProcessInfo{
			PID:  process.ProcessID(pe.ProcessID),
			Name: exe,
			Exe:  exe,
		})
		if err := windows.Process32Next(snapshot, &pe); err != nil {
			if errors.Is(err, windows.ERROR_NO_MORE_FILES) {
				break
			}
			return nil, fmt.Errorf("Process32Next failed: %w", err)
		}
	}
	return results, nil
}

// WindowsProcessHelper implements the process.ProcessHelper interface
type WindowsProcessHelper struct {
	process.ProcessFinder
}

// NewHelper creates a new WindowsProcessHelper
func NewHelper() process.ProcessHelper {
	return &WindowsProcessHelper{ProcessFinder: NewProcessFinder()}
}

func (h *WindowsProcessHelper) NewWithPID(pid process.ProcessID) (process.Process, error) {
	return NewWithPID(pid)
}
