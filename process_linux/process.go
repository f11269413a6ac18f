//go:build linux

package process_linux

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rythin-sr/LiveSplit.Dishonored/process"
	"github.com/rythin-sr/LiveSplit.Dishonored/process/memory_map"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

// LinuxProcess implements the process.Process interface for Linux systems.
// Windows games hosted by Wine/Proton are ordinary Linux processes with their
// PE images mapped from disk, so the same reader serves both.
type LinuxProcess struct {
	pid     process.ProcessID
	name    string
	log     *logger.Logger
	mm      []memory_map.MemoryMapItem
	modules []process.ModuleInfo
	ptrSize process.ProcessMemorySize
	mu      sync.Mutex
}

var _ process.Process = (*LinuxProcess)(nil)

// NewWithPID creates a new LinuxProcess instance and opens it with the given PID
func NewWithPID(pid process.ProcessID) (process.Process, error) {
	p := &LinuxProcess{}
	err := p.Open(pid)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (p *LinuxProcess) Open(pid process.ProcessID) error {
	procPath := fmt.Sprintf("/proc/%d", pid)
	if _, err := os.Stat(procPath); os.IsNotExist(err) {
		return fmt.Errorf("process with PID %d does not exist", pid)
	}

	comm, err := os.ReadFile(filepath.Join(procPath, "comm"))
	if err != nil {
		return fmt.Errorf("failed to read process name: %w", err)
	}

	p.mu.Lock()
	p.pid = pid
	p.name = string(bytesTrimNL(comm))
	p.ptrSize = process.PointerSize64
	p.log = logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, fmt.Sprintf("process-%d", pid)))
	p.mu.Unlock()

	// Initialize memory map - call without holding the lock to avoid deadlock
	if err := p.UpdateMemoryMap(); err != nil {
		return fmt.Errorf("failed to initialize memory map: %w", err)
	}

	if main, err := process.MainModule(p); err == nil {
		if size, err := process.DetectPointerSize(p, main); err == nil {
			p.mu.Lock()
			p.ptrSize = size
			p.mu.Unlock()
		} else {
			p.log.Warn("Failed to detect pointer size, assuming 64-bit: ", err)
		}
	}

	p.log.Infoln("Process opened", p.name, "pointer size", p.PointerSize())

	return nil
}

func (p *LinuxProcess) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.log != nil {
		p.log.Infoln("Closing process")
	}

	p.pid = 0
	p.name = ""
	p.mm = nil
	p.modules = nil

	p.log = logger.NewLogger(coloransi.Color(coloransi.Red, coloransi.ColorOrange, "process-not-open"))

	return nil
}

// GetPID returns the process ID
func (p *LinuxProcess) GetPID() process.ProcessID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pid
}

func (p *LinuxProcess) State() process.ProcessState {
	pid := p.GetPID()
	if pid == 0 {
		return process.ProcessClosed
	}
	if !procAlive(int(pid)) {
		return process.ProcessExited
	}
	return process.ProcessRunning
}

func (p *LinuxProcess) PointerSize() process.ProcessMemorySize {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ptrSize
}

func (p *LinuxProcess) UpdateMemoryMap() error {
	p.mu.Lock()
	pid := p.pid
	name := p.name
	p.mu.Unlock()

	if pid == 0 {
		return process.ErrProcessNotOpen
	}

	mm, err := memory_map.NewLinuxMemoryMap().ReadMemoryMap(int(pid))
	if err != nil {
		return fmt.Errorf("failed to read memory map: %w", err)
	}

	// IsValidAddress2 requires the memory map to be sorted by address
	memory_map.Sort(mm)

	p.mu.Lock()
	p.mm = mm
	p.mu.Unlock()

	// Module sizes come from the PE headers, which needs the new map in place
	exe, _ := os.Readlink(fmt.Sprintf("/proc/%d/exe", pid))
	modules := p.buildModules(memory_map.Images(mm), name, exe)

	p.mu.Lock()
	p.modules = modules
	p.mu.Unlock()
	return nil
}

// buildModules converts mapped images to modules and moves the main executable
// to the front. Under Wine the main image is the one named like the process,
// /proc/<pid>/exe points at the Wine loader.
func (p *LinuxProcess) buildModules(images []memory_map.MappedImage, name, exe string) []process.ModuleInfo {
	var modules []process.ModuleInfo
	mainIdx := -1

	for _, img := range images {
		m := process.ModuleInfo{
			Name: img.Name,
			Path: img.Path,
			Base: process.ProcessMemoryAddress(img.Start),
			Size: process.ProcessMemorySize(img.End - img.Start),
		}
		if size, err := process.ImageSize(p, m.Base); err == nil && size > 0 {
			m.Size = size
		}

		if mainIdx < 0 {
			n := process.NormalizeName(img.Name)
			if n == process.NormalizeName(name) || (exe != "" && n == process.NormalizeName(exe)) {
				mainIdx = len(modules)
			}
		}
		modules = append(modules, m)
	}

	if mainIdx > 0 {
		main := modules[mainIdx]
		copy(modules[1:mainIdx+1], modules[:mainIdx])
		modules[0] = main
	}
	return modules
}

func (p *LinuxProcess) Modules() ([]process.ModuleInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pid == 0 {
		return nil, process.ErrProcessNotOpen
	}

	result := make([]process.ModuleInfo, len(p.modules))
	copy(result, p.modules)
	return result, nil
}

func (p *LinuxProcess) IsValidAddress(addr process.ProcessMemoryAddress) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.isValidAddressInternal(addr)
}

// Internal helper function that assumes the mutex is already locked
func (p *LinuxProcess) isValidAddressInternal(addr process.ProcessMemoryAddress) bool {
	if addr <= 0x10000 {
		return false
	}

	if addr > 0x7FFFFFFFFFFF {
		return false
	}

	if item := memory_map.IsValidAddress2(uint64(addr), p.mm); item != nil {
		return item.IsReadable()
	}

	return false
}

func (p *LinuxProcess) GetMemoryMap() ([]memory_map.MemoryMapItem, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pid == 0 {
		return nil, process.ErrProcessNotOpen
	}

	// Make a copy of the memory map to prevent external modification
	result := make([]memory_map.MemoryMapItem, len(p.mm))
	copy(result, p.mm)

	return result, nil
}

func (p *LinuxProcess) String() string {
	return fmt.Sprintf("%s (%d)", strings.TrimSpace(p.name), p.GetPID())
}
