package memory_map

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// MemoryMapItem represents a memory region in a process's address space
type MemoryMapItem struct {
	Address uint64 `json:"address"` // The starting address of the memory region
	Size    uint   `json:"size"`    // The size of the memory region in bytes
	Perms   string `json:"perms"`   // Permissions (e.g., "r-xp" for read, execute, private)
	Path    string `json:"path"`    // Backing file, empty for anonymous memory
}

// String returns a string representation of the memory map item
func (mmItem MemoryMapItem) String() string {
	return fmt.Sprintf("Address: %x, Size: %d, Perms: %s, Path: %s", mmItem.Address, mmItem.Size, mmItem.Perms, mmItem.Path)
}

func (mmItem MemoryMapItem) End() uint64 {
	return mmItem.Address + uint64(mmItem.Size)
}

func (mmItem MemoryMapItem) IsReadable() bool {
	return len(mmItem.Perms) > 0 && mmItem.Perms[0] == 'r'
}

func (mmItem MemoryMapItem) IsWritable() bool {
	return len(mmItem.Perms) > 1 && mmItem.Perms[1] == 'w'
}

// MemoryMap defines the interface for operations related to a process's memory map
type MemoryMap interface {
	// ReadMemoryMap reads and parses the memory map for a process
	ReadMemoryMap(pid int) ([]MemoryMapItem, error)
}

// Sort orders a memory map by address, IsValidAddress2 depends on it.
func Sort(mm []MemoryMapItem) {
	sort.Slice(mm, func(i, j int) bool {
		return mm[i].Address < mm[j].Address
	})
}

// IsValidAddress checks if an address is within a mapped memory region
func IsValidAddress(addr uint64, memoryMap []MemoryMapItem) bool {
	return GetMemoryRegionForAddress(addr, memoryMap) != nil
}

// IsValidAddress2 is IsValidAddress for a memory map sorted by address
func IsValidAddress2(addr uint64, memoryMap []MemoryMapItem) *MemoryMapItem {
	i := sort.Search(len(memoryMap), func(i int) bool {
		return memoryMap[i].Address+uint64(memoryMap[i].Size) > addr
	})
	if i < len(memoryMap) && memoryMap[i].Address <= addr {
		return &memoryMap[i]
	}

	return nil
}

// GetMemoryRegionForAddress returns the memory region containing an address
func GetMemoryRegionForAddress(addr uint64, memoryMap []MemoryMapItem) *MemoryMapItem {
	for i := range memoryMap {
		if addr >= memoryMap[i].Address && addr < memoryMap[i].End() {
			return &memoryMap[i]
		}
	}
	return nil
}

// ContainsRange reports whether [addr, addr+size) lies inside readable, contiguous regions
// of a sorted memory map.
func ContainsRange(addr uint64, size uint64, memoryMap []MemoryMapItem) bool {
	end := addr + size
	for addr < end {
		item := IsValidAddress2(addr, memoryMap)
		if item == nil || !item.IsReadable() {
			return false
		}
		addr = item.End()
	}
	return true
}

// MappedImage is the address span covered by all mappings of one backing file
type MappedImage struct {
	Name  string // base name of the file
	Path  string
	Start uint64
	End   uint64
}

// Images groups file backed regions by path, ordered by their lowest address.
// Only files that look like PE images (.exe, .dll) are reported.
func Images(memoryMap []MemoryMapItem) []MappedImage {
	byPath := make(map[string]*MappedImage)
	var order []string

	for _, item := range memoryMap {
		if item.Path == "" || !isImagePath(item.Path) {
			continue
		}
		img, ok := byPath[item.Path]
		if !ok {
			img = &MappedImage{
				Name:  imageBaseName(item.Path),
				Path:  item.Path,
				Start: item.Address,
				End:   item.End(),
			}
			byPath[item.Path] = img
			order = append(order, item.Path)
			continue
		}
		if item.Address < img.Start {
			img.Start = item.Address
		}
		if item.End() > img.End {
			img.End = item.End()
		}
	}

	result := make([]MappedImage, 0, len(order))
	for _, p := range order {
		result = append(result, *byPath[p])
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Start < result[j].Start
	})
	return result
}

func isImagePath(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".exe") || strings.HasSuffix(lower, ".dll")
}

func imageBaseName(path string) string {
	return filepath.Base(strings.ReplaceAll(path, "\\", "/"))
}
