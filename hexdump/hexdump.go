// Package hexdump renders process memory around watched values for the probe command.
package hexdump

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/rythin-sr/LiveSplit.Dishonored/coloransi"
	"github.com/rythin-sr/LiveSplit.Dishonored/process"
)

// HexDumpOptions defines options for customizing the hexdump output
type HexDumpOptions struct {
	// BytesPerLine defines the number of bytes to display per line
	BytesPerLine int

	// StartOffset is the address of the first byte
	StartOffset uint64

	// Plain disables ANSI colors
	Plain bool

	// Highlight marks the bytes [HighlightStart, HighlightEnd) relative to the data
	HighlightStart, HighlightEnd int

	// PointerSize selects 4 or 8 byte pointer previews, 0 disables them
	PointerSize process.ProcessMemorySize

	// ValidAddress decides which words look like pointers, nil disables previews
	ValidAddress func(addr process.ProcessMemoryAddress) bool

	OffsetColor       coloransi.ColorCode
	HexColor          coloransi.ColorCode
	ASCIIColor        coloransi.ColorCode
	NonPrintableColor coloransi.ColorCode
	ZeroColor         coloransi.ColorCode
	HighlightColor    coloransi.ColorCode
	PointerColor      coloransi.ColorCode
}

// DefaultOptions returns the default hexdump options
func DefaultOptions() HexDumpOptions {
	return HexDumpOptions{
		BytesPerLine:      16,
		OffsetColor:       coloransi.ColorTeal,
		HexColor:          coloransi.ColorLimeGreen,
		ASCIIColor:        coloransi.ColorWhite,
		NonPrintableColor: coloransi.Red,
		ZeroColor:         coloransi.BrightBlack,
		HighlightColor:    coloransi.Yellow,
		PointerColor:      coloransi.ColorOrange,
	}
}

func (o HexDumpOptions) paint(c coloransi.ColorCode, s string) string {
	if o.Plain {
		return s
	}
	return coloransi.Foreground(c, s)
}

func (o HexDumpOptions) highlighted(i int) bool {
	return i >= o.HighlightStart && i < o.HighlightEnd
}

// Dump creates a hex dump of the given data with specified options
func Dump(data []byte, options HexDumpOptions) string {
	var buffer bytes.Buffer
	DumpToWriter(&buffer, data, options)
	return buffer.String()
}

// DumpToWriter writes a hex dump of the given data to the specified writer
//
// 0000000010031000  00 01 02 03 04 05 06 07  08 09 0a 0b 0c 0d 0e 0f  |........ ........|  0x10031000
//
// Words that point into mapped memory are listed right of the ASCII column.
func DumpToWriter(writer io.Writer, data []byte, options HexDumpOptions) {
	if options.BytesPerLine <= 0 {
		options.BytesPerLine = 16
	}

	for offset := 0; offset < len(data); offset += options.BytesPerLine {
		end := min(offset+options.BytesPerLine, len(data))
		formatLine(writer, data[offset:end], offset, options)
	}
}

func formatLine(writer io.Writer, line []byte, index int, options HexDumpOptions) {
	addr := options.StartOffset + uint64(index)
	fmt.Fprint(writer, options.paint(options.OffsetColor, fmt.Sprintf("%016x", addr)), "  ")

	half := options.BytesPerLine / 2
	for i := 0; i < options.BytesPerLine; i++ {
		if i == half && half > 0 {
			fmt.Fprint(writer, " ")
		}
		if i >= len(line) {
			fmt.Fprint(writer, "   ")
			continue
		}
		fmt.Fprint(writer, hexByte(line[i], index+i, options), " ")
	}

	fmt.Fprint(writer, " |")
	for i, b := range line {
		if i == half && half > 0 {
			fmt.Fprint(writer, " ")
		}
		fmt.Fprint(writer, asciiByte(b, index+i, options))
	}
	fmt.Fprint(writer, "|")

	if ptrs := pointers(line, addr, options); len(ptrs) > 0 {
		fmt.Fprint(writer, "  ", options.paint(options.PointerColor, strings.Join(ptrs, " ")))
	}
	fmt.Fprintln(writer)
}

func hexByte(b byte, i int, options HexDumpOptions) string {
	s := fmt.Sprintf("%02x", b)
	switch {
	case options.highlighted(i):
		return options.paint(options.HighlightColor, s)
	case b == 0:
		return options.paint(options.ZeroColor, s)
	default:
		return options.paint(options.HexColor, s)
	}
}

func asciiByte(b byte, i int, options HexDumpOptions) string {
	c := rune(b)
	switch {
	case options.highlighted(i) && unicode.IsPrint(c) && c < unicode.MaxASCII:
		return options.paint(options.HighlightColor, string(c))
	case b == 0:
		return options.paint(options.ZeroColor, ".")
	case !unicode.IsPrint(c) || c >= unicode.MaxASCII:
		return options.paint(options.NonPrintableColor, ".")
	default:
		return options.paint(options.ASCIIColor, string(c))
	}
}

// pointers lists the aligned words of line that point into mapped memory
func pointers(line []byte, addr uint64, options HexDumpOptions) []string {
	width := int(options.PointerSize)
	if width != 4 && width != 8 || options.ValidAddress == nil {
		return nil
	}

	var result []string
	for i := 0; i+width <= len(line); i += width {
		if (addr+uint64(i))%uint64(width) != 0 {
			continue
		}
		var ptr uint64
		if width == 4 {
			ptr = uint64(binary.LittleEndian.Uint32(line[i:]))
		} else {
			ptr = binary.LittleEndian.Uint64(line[i:])
		}
		if ptr != 0 && options.ValidAddress(process.ProcessMemoryAddress(ptr)) {
			result = append(result, fmt.Sprintf("0x%x", ptr))
		}
	}
	return result
}

// Around reads the bytes around addr, aligned down to a line, and dumps them with
// [addr, addr+size) highlighted. context is the number of bytes shown before and after.
func Around(proc process.Process, addr process.ProcessMemoryAddress, size process.ProcessMemorySize, context int, options HexDumpOptions) (string, error) {
	if options.BytesPerLine <= 0 {
		options.BytesPerLine = 16
	}
	line := uint64(options.BytesPerLine)

	start := (uint64(addr) - min(uint64(addr), uint64(context))) / line * line
	end := (uint64(addr) + uint64(size) + uint64(context) + line - 1) / line * line

	data, err := proc.ReadMemory(process.ProcessMemoryAddress(start), process.ProcessMemorySize(end-start))
	if err != nil {
		// the widened window may cross a region boundary, the value itself still reads
		start = uint64(addr)
		data, err = proc.ReadMemory(addr, size)
		if err != nil {
			return "", err
		}
	}

	options.StartOffset = start
	options.HighlightStart = int(uint64(addr) - start)
	options.HighlightEnd = options.HighlightStart + int(size)
	if options.PointerSize == 0 {
		options.PointerSize = proc.PointerSize()
	}
	if options.ValidAddress == nil {
		options.ValidAddress = proc.IsValidAddress
	}
	return Dump(data, options), nil
}
