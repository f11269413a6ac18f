//go:build windows

package process_windows

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/rythin-sr/LiveSplit.Dishonored/process"
	"github.com/rythin-sr/LiveSplit.Dishonored/process/memory_map"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"

	"golang.org/x/sys/windows"
)

const (
	processAccess = windows.PROCESS_QUERY_INFORMATION | windows.PROCESS_VM_READ | windows.SYNCHRONIZE

	stillActive = 259 // STILL_ACTIVE exit code
)

// WindowsProcess implements the process.Process interface for Windows systems
type WindowsProcess struct {
	pid     process.ProcessID
	handle  windows.Handle
	log     *logger.Logger
	mm      []memory_map.MemoryMapItem
	modules []process.ModuleInfo
	ptrSize process.ProcessMemorySize
	mu      sync.Mutex
}

var _ process.Process = (*WindowsProcess)(nil)

// NewWithPID creates a new WindowsProcess instance and opens it with the given PID
func NewWithPID(pid process.ProcessID) (process.Process, error) {
	p := &WindowsProcess{}
	err := p.Open(pid)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (p *WindowsProcess) Open(pid process.ProcessID) error {
	handle, err := windows.OpenProcess(processAccess, false, uint32(pid))
	if err != nil {
		return fmt.Errorf("OpenProcess failed: %w", err)
	}

	ptrSize := process.PointerSize64
	var wow64 bool
	if err := windows.IsWow64Process(handle, &wow64); err == nil && wow64 {
		ptrSize = process.PointerSize32
	}

	p.mu.Lock()
	p.pid = pid
	p.handle = handle
	p.ptrSize = ptrSize
	p.log = logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, fmt.Sprintf("process-%d", pid)))
	p.mu.Unlock()

	if err := p.UpdateMemoryMap(); err != nil {
		p.log.Warn("Failed to initialize memory map: ", err)
	}

	// A 64-bit image outside WOW64 still reports its width in the PE header
	if main, err := process.MainModule(p); err == nil {
		if size, err := process.DetectPointerSize(p, main); err == nil && size != ptrSize {
			p.log.Warn("PE header disagrees with WOW64 state, using ", size)
			p.mu.Lock()
			p.ptrSize = size
			p.mu.Unlock()
		}
	}

	p.log.Infoln("Process opened, pointer size", p.PointerSize())
	return nil
}

func (p *WindowsProcess) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.handle != 0 {
		if err := windows.CloseHandle(p.handle); err != nil {
			return fmt.Errorf("CloseHandle failed: %w", err)
		}
		p.handle = 0
	}

	p.pid = 0
	p.mm = nil
	p.modules = nil
	p.log = logger.NewLogger(coloransi.Color(coloransi.Red, coloransi.ColorOrange, "process-not-open"))
	p.log.Infoln("Process closed")

	return nil
}

func (p *WindowsProcess) GetPID() process.ProcessID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pid
}

func (p *WindowsProcess) State() process.ProcessState {
	p.mu.Lock()
	handle := p.handle
	p.mu.Unlock()

	if handle == 0 {
		return process.ProcessClosed
	}

	var code uint32
	if err := windows.GetExitCodeProcess(handle, &code); err != nil || code != stillActive {
		return process.ProcessExited
	}
	return process.ProcessRunning
}

func (p *WindowsProcess) PointerSize() process.ProcessMemorySize {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ptrSize
}

func (p *WindowsProcess) UpdateMemoryMap() error {
	p.mu.Lock()
	handle, pid := p.handle, p.pid
	p.mu.Unlock()

	if handle == 0 {
		return process.ErrProcessNotOpen
	}

	mm, err := memory_map.ReadMemoryMapHandle(handle)
	if err != nil {
		return err
	}
	memory_map.Sort(mm)

	modules, err := snapshotModules(uint32(pid))
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.mm = mm
	p.modules = modules
	p.mu.Unlock()
	return nil
}

// snapshotModules lists the modules of pid, the main executable comes first.
func snapshotModules(pid uint32) ([]process.ModuleInfo, error) {
	snapshot, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPMODULE|windows.TH32CS_SNAPMODULE32, pid)
	if err != nil {
		return nil, fmt.Errorf("CreateToolhelp32Snapshot failed: %w", err)
	}
	defer windows.CloseHandle(snapshot)

	var me windows.ModuleEntry32
	me.Size = uint32(unsafe.Sizeof(me))
	if err := windows.Module32First(snapshot, &me); err != nil {
		return nil, fmt.Errorf("Module32First failed: %w", err)
	}

	var modules []process.ModuleInfo
	for {
		modules = append(modules, process.ModuleInfo{
			Name: windows.UTF16ToString(me.Module[:]),
			Path: windows.UTF16ToString(me.ExePath[:]),
			Base: process.ProcessMemoryAddress(me.ModBaseAddr),
			Size: process.ProcessMemorySize(me.ModBaseSize),
		})
		if err := windows.Module32Next(snapshot, &me); err != nil {
			if errors.Is(err, windows.ERROR_NO_MORE_FILES) {
				break
			}
			return nil, fmt.Errorf("Module32Next failed: %w", err)
		}
	}
	return modules, nil
}

func (p *WindowsProcess) Modules() ([]process.ModuleInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.handle == 0 {
		return nil, process.ErrProcessNotOpen
	}
	result := make([]process.ModuleInfo, len(p.modules))
	copy(result, p.modules)
	return result, nil
}

func (p *WindowsProcess) IsValidAddress(addr process.ProcessMemoryAddress) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if item := memory_map.IsValidAddress2(uint64(addr), p.mm); item != nil {
		return item.IsReadable()
	}
	return false
}

func (p *WindowsProcess) GetMemoryMap() ([]memory_map.MemoryMapItem, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handle == 0 {
		return nil, process.ErrProcessNotOpen
	}
	result := make([]memory_map.MemoryMapItem, len(p.mm))
	copy(result, p.mm)
	return result, nil
}

func (p *WindowsProcess) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}

	p.mu.Lock()
	handle := p.handle
	p.mu.Unlock()

	if handle == 0 {
		return nil, process.ErrProcessNotOpen
	}

	buf := make([]byte, size)
	var bytesRead uintptr
	err := windows.ReadProcessMemory(handle, uintptr(addr), &buf[0], uintptr(size), &bytesRead)
	if err != nil {
		if errors.Is(err, windows.ERROR_PARTIAL_COPY) || errors.Is(err, windows.ERROR_NOACCESS) {
			return nil, fmt.Errorf("read 0x%x (%d bytes): %w", uint64(addr), size, process.ErrAddressNotMapped)
		}
		return nil, fmt.Errorf("ReadProcessMemory failed: %w", err)
	}

	if bytesRead != uintptr(size) {
		return nil, fmt.Errorf("read incomplete: expected %d, got %d: %w", size, bytesRead, process.ErrAddressNotMapped)
	}

	return buf, nil
}
