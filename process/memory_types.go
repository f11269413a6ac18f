package process

import (
	"fmt"
)

// ProcessMemoryAddress represents a memory address within a process
type ProcessMemoryAddress uint64

func (pma ProcessMemoryAddress) ToString() string {
	return fmt.Sprintf("0x%X", uint64(pma))
}

// Offset returns the address moved forward by off bytes
func (pma ProcessMemoryAddress) Offset(off ProcessMemorySize) ProcessMemoryAddress {
	return pma + ProcessMemoryAddress(off)
}

// ProcessMemorySize represents a size of memory region
type ProcessMemorySize uint

func (pms ProcessMemorySize) ToString() string {
	return fmt.Sprintf("%d bytes", uint(pms))
}

// Pointer widths of the processes we read from.
const (
	PointerSize32 ProcessMemorySize = 4
	PointerSize64 ProcessMemorySize = 8
)
