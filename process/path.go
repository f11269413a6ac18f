package process

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Scalar is the set of fixed-size leaf values a pointer path can end in.
// Booleans are one byte, any non-zero value reads as true.
type Scalar interface {
	~bool | ~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~int64 | ~uint64 | ~float32 | ~float64
}

// DeepPointer is a pointer path anchored at a module base. An empty Module
// anchors the path at the main executable.
type DeepPointer struct {
	Module  string
	Offsets []ProcessMemorySize
}

// NewDeepPointer returns a path anchored at the main executable.
func NewDeepPointer(offsets ...ProcessMemorySize) DeepPointer {
	return DeepPointer{Offsets: offsets}
}

// NewModuleDeepPointer returns a path anchored at the named module.
func NewModuleDeepPointer(module string, offsets ...ProcessMemorySize) DeepPointer {
	return DeepPointer{Module: module, Offsets: offsets}
}

func (dp DeepPointer) String() string {
	var sb strings.Builder
	if dp.Module == "" {
		sb.WriteString("main")
	} else {
		sb.WriteString(dp.Module)
	}
	for i, off := range dp.Offsets {
		if i == 0 {
			fmt.Fprintf(&sb, "+0x%X", uint64(off))
		} else {
			fmt.Fprintf(&sb, "->0x%X", uint64(off))
		}
	}
	return sb.String()
}

// Base returns the module base the path starts from.
func (dp DeepPointer) Base(proc Process) (ProcessMemoryAddress, error) {
	var (
		m   ModuleInfo
		err error
	)
	if dp.Module == "" {
		m, err = MainModule(proc)
	} else {
		m, err = Module(proc, dp.Module)
	}
	if err != nil {
		return 0, fmt.Errorf("%s: %w", dp, err)
	}
	return m.Base, nil
}

// Resolve walks the path and returns the address of its leaf value.
func (dp DeepPointer) Resolve(proc Process) (ProcessMemoryAddress, error) {
	base, err := dp.Base(proc)
	if err != nil {
		return 0, err
	}
	return ResolvePath(proc, base, dp.Offsets...)
}

// ResolvePath starts at base, adds the first offset, reads a pointer, adds the next
// offset, reads a pointer, etc. The last offset is added to the final pointer
// without dereferencing it. If offsets is empty, base itself is returned.
func ResolvePath(proc Process, base ProcessMemoryAddress, offsets ...ProcessMemorySize) (ProcessMemoryAddress, error) {
	currentAddr := base

	for i := 0; i < len(offsets)-1; i++ {
		ptrAddr := currentAddr.Offset(offsets[i])

		ptrVal, err := ReadPointer(proc, ptrAddr)
		if err != nil {
			return 0, fmt.Errorf("failed to read pointer at offset %d (addr 0x%x): %w", i, ptrAddr, err)
		}

		if ptrVal == 0 {
			return 0, fmt.Errorf("pointer at offset %d (addr 0x%x) is null: %w", i, ptrAddr, ErrInvalidPointer)
		}

		currentAddr = ptrVal
	}

	if len(offsets) == 0 {
		return currentAddr, nil
	}
	return currentAddr.Offset(offsets[len(offsets)-1]), nil
}

// ReadPath reads a value of type T at the end of a pointer path starting at base.
func ReadPath[T Scalar](proc Process, base ProcessMemoryAddress, offsets ...ProcessMemorySize) (T, error) {
	addr, err := ResolvePath(proc, base, offsets...)
	if err != nil {
		var zero T
		return zero, err
	}

	val, err := Read[T](proc, addr)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("failed to read final value at 0x%x: %w", addr, err)
	}
	return val, nil
}

// ReadDeep reads a value of type T at the end of dp.
func ReadDeep[T Scalar](proc Process, dp DeepPointer) (T, error) {
	base, err := dp.Base(proc)
	if err != nil {
		var zero T
		return zero, err
	}
	return ReadPath[T](proc, base, dp.Offsets...)
}

// ReadDeepNTS reads a null-terminated string of at most maxLength bytes at the end of dp.
func ReadDeepNTS(proc Process, dp DeepPointer, maxLength ProcessMemorySize) (string, error) {
	addr, err := dp.Resolve(proc)
	if err != nil {
		return "", err
	}
	return ReadNTS(proc, addr, maxLength)
}

// Read is a helper to read a single value of type T from memory
func Read[T Scalar](proc Process, addr ProcessMemoryAddress) (T, error) {
	var t T
	size := binary.Size(t)
	if size <= 0 {
		return t, fmt.Errorf("unsupported value type %T", t)
	}

	data, err := proc.ReadMemory(addr, ProcessMemorySize(size))
	if err != nil {
		return t, err
	}

	if _, err := binary.Decode(data, binary.LittleEndian, &t); err != nil {
		return t, fmt.Errorf("decode %T at 0x%x: %w", t, addr, err)
	}
	return t, nil
}

// ReadPointer reads a pointer of the target's width from the specified address
func ReadPointer(proc Process, addr ProcessMemoryAddress) (ProcessMemoryAddress, error) {
	switch proc.PointerSize() {
	case PointerSize32:
		v, err := Read[uint32](proc, addr)
		return ProcessMemoryAddress(v), err
	default:
		v, err := Read[uint64](proc, addr)
		return ProcessMemoryAddress(v), err
	}
}

// ReadNTS reads a null-terminated string from the specified address with a maximum length
func ReadNTS(proc Process, addr ProcessMemoryAddress, maxLength ProcessMemorySize) (string, error) {
	if maxLength == 0 {
		return "", nil
	}

	data, err := proc.ReadMemory(addr, maxLength)
	if err != nil {
		return "", err
	}

	return TrimNTS(data), nil
}

// TrimNTS cuts data at the first null byte.
func TrimNTS(data []byte) string {
	for i, b := range data {
		if b == 0 {
			return string(data[:i])
		}
	}
	// No terminator, the whole buffer is the string
	return string(data)
}

// Hop is one dereference step recorded by Trace.
type Hop struct {
	From   ProcessMemoryAddress // address the pointer was read from
	Offset ProcessMemorySize    // offset added before the read
	To     ProcessMemoryAddress // pointer value read
}

// Trace walks dp like Resolve and also returns every intermediate hop.
// Hops read before a failure are returned alongside the error.
func (dp DeepPointer) Trace(proc Process) ([]Hop, ProcessMemoryAddress, error) {
	current, err := dp.Base(proc)
	if err != nil {
		return nil, 0, err
	}

	var hops []Hop
	for i := 0; i < len(dp.Offsets)-1; i++ {
		off := dp.Offsets[i]
		ptr, err := ReadPointer(proc, current.Offset(off))
		hops = append(hops, Hop{From: current, Offset: off, To: ptr})
		if err != nil {
			return hops, 0, fmt.Errorf("step %d: %w", i, err)
		}
		if ptr == 0 {
			return hops, 0, fmt.Errorf("step %d: %w", i, ErrInvalidPointer)
		}
		current = ptr
	}

	if len(dp.Offsets) > 0 {
		current = current.Offset(dp.Offsets[len(dp.Offsets)-1])
	}
	return hops, current, nil
}
