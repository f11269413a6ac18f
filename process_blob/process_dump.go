package process_blob

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rythin-sr/LiveSplit.Dishonored/process"
	"github.com/rythin-sr/LiveSplit.Dishonored/process/memory_map"
)

// ProcessDump implements process.Process over memory held in this process:
// either loaded from a dump directory or assembled region by region.
type ProcessDump struct {
	PID       process.ProcessID
	Name      string
	PtrSize   process.ProcessMemorySize
	Images    []process.ModuleInfo
	MemoryMap []memory_map.MemoryMapItem
	Blobs     map[uint64]*ProcessBlob // Region address -> data

	state process.ProcessState
}

var _ process.Process = (*ProcessDump)(nil)

// NewProcessDump creates a new, empty, running ProcessDump
func NewProcessDump() *ProcessDump {
	return &ProcessDump{
		PtrSize: process.PointerSize64,
		Blobs:   make(map[uint64]*ProcessBlob),
		state:   process.ProcessRunning,
	}
}

// AddRegion maps a zero filled region of size bytes at addr and returns it
func (p *ProcessDump) AddRegion(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) *ProcessBlob {
	blob := NewProcessBlob(addr, make([]byte, size))
	p.addBlob(blob, "rw-p", "")
	return blob
}

func (p *ProcessDump) addBlob(blob *ProcessBlob, perms, path string) {
	p.Blobs[uint64(blob.Base())] = blob
	p.MemoryMap = append(p.MemoryMap, memory_map.MemoryMapItem{
		Address: uint64(blob.Base()),
		Size:    uint(len(blob.Data())),
		Perms:   perms,
		Path:    path,
	})
	memory_map.Sort(p.MemoryMap)
}

// AddModule maps an image of size bytes at base and registers it as a module.
// The first module added is the main executable.
func (p *ProcessDump) AddModule(name string, base process.ProcessMemoryAddress, size process.ProcessMemorySize) *ProcessBlob {
	blob := NewProcessBlob(base, make([]byte, size))
	p.addBlob(blob, "r--p", name)
	p.Images = append(p.Images, process.ModuleInfo{Name: name, Path: name, Base: base, Size: size})
	return blob
}

// RegisterModule records a module without mapping memory for it, regions inside
// it are added separately with AddRegion.
func (p *ProcessDump) RegisterModule(name string, base process.ProcessMemoryAddress, size process.ProcessMemorySize) {
	p.Images = append(p.Images, process.ModuleInfo{Name: name, Path: name, Base: base, Size: size})
}

// SetExited marks the dump as a process that went away, reads start failing.
func (p *ProcessDump) SetExited() {
	p.state = process.ProcessExited
}

func (p *ProcessDump) Open(pid process.ProcessID) error {
	return fmt.Errorf("Open not supported for ProcessDump, use Load")
}

func (p *ProcessDump) Close() error {
	p.state = process.ProcessClosed
	return nil
}

func (p *ProcessDump) GetPID() process.ProcessID {
	return p.PID
}

func (p *ProcessDump) State() process.ProcessState {
	return p.state
}

func (p *ProcessDump) PointerSize() process.ProcessMemorySize {
	return p.PtrSize
}

func (p *ProcessDump) UpdateMemoryMap() error {
	return nil // Memory map is static in a dump
}

func (p *ProcessDump) IsValidAddress(addr process.ProcessMemoryAddress) bool {
	return memory_map.IsValidAddress(uint64(addr), p.MemoryMap)
}

func (p *ProcessDump) GetMemoryMap() ([]memory_map.MemoryMapItem, error) {
	result := make([]memory_map.MemoryMapItem, len(p.MemoryMap))
	copy(result, p.MemoryMap)
	return result, nil
}

func (p *ProcessDump) Modules() ([]process.ModuleInfo, error) {
	result := make([]process.ModuleInfo, len(p.Images))
	copy(result, p.Images)
	return result, nil
}

func (p *ProcessDump) blobFor(addr process.ProcessMemoryAddress) (*ProcessBlob, error) {
	region := memory_map.GetMemoryRegionForAddress(uint64(addr), p.MemoryMap)
	if region == nil {
		return nil, process.ErrAddressNotMapped
	}
	blob, ok := p.Blobs[region.Address]
	if !ok {
		return nil, fmt.Errorf("no data for region 0x%x: %w", region.Address, process.ErrAddressNotMapped)
	}
	return blob, nil
}

func (p *ProcessDump) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	if p.state == process.ProcessExited {
		return nil, process.ErrProcessExited
	}
	if p.state == process.ProcessClosed {
		return nil, process.ErrProcessNotOpen
	}

	blob, err := p.blobFor(addr)
	if err != nil {
		return nil, err
	}

	data, err := blob.ReadMemory(addr, size)
	if err != nil {
		return nil, fmt.Errorf("read %d bytes at 0x%x: %w", size, uint64(addr), process.ErrAddressNotMapped)
	}
	return data, nil
}

// WriteMemory writes into an existing region of the dump
func (p *ProcessDump) WriteMemory(addr process.ProcessMemoryAddress, data []byte) error {
	blob, err := p.blobFor(addr)
	if err != nil {
		return err
	}
	return blob.WriteMemory(addr, data)
}

// Put writes a scalar value at addr.
func Put[T process.Scalar](p *ProcessDump, addr process.ProcessMemoryAddress, v T) error {
	data := encode(any(v))
	if data == nil {
		return fmt.Errorf("unsupported value type %T", v)
	}
	return p.WriteMemory(addr, data)
}

// PutPointer writes target at addr using the dump's pointer width.
func (p *ProcessDump) PutPointer(addr, target process.ProcessMemoryAddress) error {
	if p.PtrSize == process.PointerSize32 {
		return Put(p, addr, uint32(target))
	}
	return Put(p, addr, uint64(target))
}

// PutString writes s followed by a null byte at addr.
func (p *ProcessDump) PutString(addr process.ProcessMemoryAddress, s string) error {
	return p.WriteMemory(addr, append([]byte(s), 0))
}

type dumpMetadata struct {
	PID         process.ProcessID         `json:"pid"`
	Name        string                    `json:"name"`
	PointerSize process.ProcessMemorySize `json:"pointer_size"`
	Modules     []process.ModuleInfo      `json:"modules"`
}

func blobFileName(dirname string, region memory_map.MemoryMapItem) string {
	return filepath.Join(dirname, fmt.Sprintf("blob_0x%x_%d.bin", region.Address, region.Size))
}

// Save writes metadata, memory map and every region's data into dirname
func (p *ProcessDump) Save(dirname string) error {
	if err := os.MkdirAll(dirname, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	metadataJSON, err := json.MarshalIndent(dumpMetadata{
		PID:         p.PID,
		Name:        p.Name,
		PointerSize: p.PtrSize,
		Modules:     p.Images,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dirname, "metadata.json"), metadataJSON, 0644); err != nil {
		return fmt.Errorf("failed to write metadata file: %w", err)
	}

	memoryMapJSON, err := json.MarshalIndent(p.MemoryMap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal memory map: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dirname, "process_memory_map.json"), memoryMapJSON, 0644); err != nil {
		return fmt.Errorf("failed to write memory map file: %w", err)
	}

	for _, region := range p.MemoryMap {
		blob, ok := p.Blobs[region.Address]
		if !ok {
			continue
		}
		if err := os.WriteFile(blobFileName(dirname, region), blob.Data(), 0644); err != nil {
			return fmt.Errorf("failed to write blob 0x%x: %w", region.Address, err)
		}
	}
	return nil
}

// Load reads a directory written by Save
func (p *ProcessDump) Load(dirname string) error {
	metadataBytes, err := os.ReadFile(filepath.Join(dirname, "metadata.json"))
	if err != nil {
		return fmt.Errorf("failed to read metadata: %w", err)
	}

	var metadata dumpMetadata
	if err := json.Unmarshal(metadataBytes, &metadata); err != nil {
		return fmt.Errorf("failed to unmarshal metadata: %w", err)
	}
	p.PID = metadata.PID
	p.Name = metadata.Name
	p.PtrSize = metadata.PointerSize
	if p.PtrSize != process.PointerSize32 {
		p.PtrSize = process.PointerSize64
	}
	p.Images = metadata.Modules

	mmBytes, err := os.ReadFile(filepath.Join(dirname, "process_memory_map.json"))
	if err != nil {
		return fmt.Errorf("failed to read memory map: %w", err)
	}
	if err := json.Unmarshal(mmBytes, &p.MemoryMap); err != nil {
		return fmt.Errorf("failed to unmarshal memory map: %w", err)
	}

	sort.Slice(p.MemoryMap, func(i, j int) bool {
		return p.MemoryMap[i].Address < p.MemoryMap[j].Address
	})

	if p.Blobs == nil {
		p.Blobs = make(map[uint64]*ProcessBlob)
	}
	for _, region := range p.MemoryMap {
		data, err := os.ReadFile(blobFileName(dirname, region))
		if errors.Is(err, os.ErrNotExist) {
			continue // Region listed but not captured
		}
		if err != nil {
			return fmt.Errorf("failed to read blob 0x%x: %w", region.Address, err)
		}
		p.Blobs[region.Address] = NewProcessBlob(process.ProcessMemoryAddress(region.Address), data)
	}

	p.state = process.ProcessRunning
	return nil
}
