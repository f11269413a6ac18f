package process_blob

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/rythin-sr/LiveSplit.Dishonored/process"
)

var ErrOutOfBounds = errors.New("address out of bounds")

// ProcessBlob is a contiguous copy of process memory starting at a base address
type ProcessBlob struct {
	baseaddress process.ProcessMemoryAddress
	data        []byte
}

func NewProcessBlob(baseAddress process.ProcessMemoryAddress, data []byte) *ProcessBlob {
	return &ProcessBlob{
		baseaddress: baseAddress,
		data:        data,
	}
}

func (p *ProcessBlob) Data() []byte {
	return p.data
}

func (p *ProcessBlob) Base() process.ProcessMemoryAddress {
	return p.baseaddress
}

func (p *ProcessBlob) End() process.ProcessMemoryAddress {
	return p.baseaddress + process.ProcessMemoryAddress(len(p.data))
}

// Contains reports whether [addr, addr+size) lies inside the blob
func (p *ProcessBlob) Contains(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) bool {
	return addr >= p.baseaddress && uint64(addr)+uint64(size) <= uint64(p.End())
}

// ReadMemory returns a copy of size bytes at addr
func (p *ProcessBlob) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	if !p.Contains(addr, size) {
		return nil, ErrOutOfBounds
	}
	offset := uint64(addr - p.baseaddress)
	out := make([]byte, size)
	copy(out, p.data[offset:offset+uint64(size)])
	return out, nil
}

// WriteMemory overwrites len(data) bytes at addr
func (p *ProcessBlob) WriteMemory(addr process.ProcessMemoryAddress, data []byte) error {
	if !p.Contains(addr, process.ProcessMemorySize(len(data))) {
		return ErrOutOfBounds
	}
	copy(p.data[addr-p.baseaddress:], data)
	return nil
}

// encode serializes a scalar little-endian the way the reader decodes it
func encode(v any) []byte {
	switch v := v.(type) {
	case bool:
		if v {
			return []byte{1}
		}
		return []byte{0}
	case uint8:
		return []byte{v}
	case int8:
		return []byte{byte(v)}
	case uint16:
		return binary.LittleEndian.AppendUint16(nil, v)
	case int16:
		return binary.LittleEndian.AppendUint16(nil, uint16(v))
	case uint32:
		return binary.LittleEndian.AppendUint32(nil, v)
	case int32:
		return binary.LittleEndian.AppendUint32(nil, uint32(v))
	case uint64:
		return binary.LittleEndian.AppendUint64(nil, v)
	case int64:
		return binary.LittleEndian.AppendUint64(nil, uint64(v))
	case float32:
		return binary.LittleEndian.AppendUint32(nil, math.Float32bits(v))
	case float64:
		return binary.LittleEndian.AppendUint64(nil, math.Float64bits(v))
	}
	return nil
}
