package hexdump

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rythin-sr/LiveSplit.Dishonored/coloransi"
	"github.com/rythin-sr/LiveSplit.Dishonored/process"
	"github.com/rythin-sr/LiveSplit.Dishonored/process_blob"
)

func TestDumpPlain(t *testing.T) {
	opts := DefaultOptions()
	opts.Plain = true
	opts.StartOffset = 0x1000

	out := Dump([]byte("LoadingSewers\x00\x01\x02AB"), opts)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)

	assert.Equal(t,
		"0000000000001000  4c 6f 61 64 69 6e 67 53  65 77 65 72 73 00 01 02  |LoadingS ewers...|",
		lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "0000000000001010  41 42 "))
	assert.True(t, strings.HasSuffix(lines[1], "|AB|"))
}

func TestDumpColoredStripsToPlain(t *testing.T) {
	data := []byte{0, 1, 'a', 'b', 0xff}
	colored := DefaultOptions()
	plain := DefaultOptions()
	plain.Plain = true

	assert.Equal(t, Dump(data, plain), coloransi.Strip(Dump(data, colored)))
}

func TestAroundShowsPointers(t *testing.T) {
	dump := process_blob.NewProcessDump()
	dump.PtrSize = 4
	dump.AddRegion(0x10000, 0x100)
	dump.AddRegion(0x20000, 0x100)
	require.NoError(t, dump.PutPointer(0x10040, 0x20010))
	require.NoError(t, process_blob.Put(dump, 0x10044, uint32(0xdeadbeef)))

	opts := DefaultOptions()
	opts.Plain = true
	out, err := Around(dump, 0x10040, 4, 8, opts)
	require.NoError(t, err)

	assert.Contains(t, out, "0000000000010030")
	assert.Contains(t, out, "0000000000010040  10 00 02 00 ef be ad de")
	assert.Contains(t, out, "0x20010")
	assert.NotContains(t, out, "0xdeadbeef")
}

func TestAroundFallsBackToValue(t *testing.T) {
	dump := process_blob.NewProcessDump()
	dump.AddRegion(0x10000, 0x10)
	require.NoError(t, dump.PutString(0x10000, "Dishonored"))

	opts := DefaultOptions()
	opts.Plain = true
	out, err := Around(dump, 0x10000, 0x10, 32, opts)
	require.NoError(t, err)
	assert.Contains(t, out, "|Dishonor ed......|")

	_, err = Around(dump, 0x50000, 4, 0, opts)
	assert.Error(t, err)
}

func TestDumpPointerPreviewUsesValidAddress(t *testing.T) {
	data := []byte{
		0x00, 0x10, 0x40, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x20, 0x40, 0x00, 0x00, 0x00, 0x00, 0x00,
	}
	opts := DefaultOptions()
	opts.Plain = true
	opts.PointerSize = 8

	assert.True(t, strings.HasSuffix(strings.TrimRight(Dump(data, opts), "\n"), "|"))

	var asked []process.ProcessMemoryAddress
	opts.ValidAddress = func(addr process.ProcessMemoryAddress) bool {
		asked = append(asked, addr)
		return addr == 0x402000
	}
	out := Dump(data, opts)
	assert.Equal(t, []process.ProcessMemoryAddress{0x401000, 0x402000}, asked)
	assert.True(t, strings.HasSuffix(strings.TrimRight(out, "\n"), "|  0x402000"))
}
