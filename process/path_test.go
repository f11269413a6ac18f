package process_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rythin-sr/LiveSplit.Dishonored/process"
	"github.com/rythin-sr/LiveSplit.Dishonored/process_blob"
)

const (
	mainBase process.ProcessMemoryAddress = 0x400000
	libBase  process.ProcessMemoryAddress = 0x10000000
	heapBase process.ProcessMemoryAddress = 0x20000000

	firstObj  = heapBase + 0x100
	secondObj = heapBase + 0x800
)

// newChainDump builds main+0x40 -> first, first+0x8 -> second for the given width.
func newChainDump(t *testing.T, ptrSize process.ProcessMemorySize) *process_blob.ProcessDump {
	t.Helper()
	d := process_blob.NewProcessDump()
	d.PtrSize = ptrSize
	d.AddModule("Game.exe", mainBase, 0x1000)
	d.AddModule("lib.dll", libBase, 0x1000)
	d.AddRegion(heapBase, 0x1000)

	require.NoError(t, d.PutPointer(mainBase+0x40, firstObj))
	require.NoError(t, d.PutPointer(firstObj+0x8, secondObj))
	return d
}

func TestReadDeepScalarsBothWidths(t *testing.T) {
	for _, size := range []process.ProcessMemorySize{process.PointerSize32, process.PointerSize64} {
		d := newChainDump(t, size)
		require.NoError(t, process_blob.Put(d, secondObj+0x10, int32(-7)))
		require.NoError(t, process_blob.Put(d, secondObj+0x14, float32(9826.25)))
		require.NoError(t, process_blob.Put(d, secondObj+0x18, true))
		require.NoError(t, d.PutString(secondObj+0x20, "LoadingPrison"))

		i, err := process.ReadDeep[int32](d, process.NewDeepPointer(0x40, 0x8, 0x10))
		require.NoError(t, err)
		assert.Equal(t, int32(-7), i)

		f, err := process.ReadDeep[float32](d, process.NewDeepPointer(0x40, 0x8, 0x14))
		require.NoError(t, err)
		assert.Equal(t, float32(9826.25), f)

		b, err := process.ReadDeep[bool](d, process.NewDeepPointer(0x40, 0x8, 0x18))
		require.NoError(t, err)
		assert.True(t, b)

		s, err := process.ReadDeepNTS(d, process.NewDeepPointer(0x40, 0x8, 0x20), 64)
		require.NoError(t, err)
		assert.Equal(t, "LoadingPrison", s)
	}
}

func TestResolvePathNullPointer(t *testing.T) {
	d := newChainDump(t, process.PointerSize32)
	require.NoError(t, d.PutPointer(firstObj+0x8, 0))

	_, err := process.NewDeepPointer(0x40, 0x8, 0x10).Resolve(d)
	assert.ErrorIs(t, err, process.ErrInvalidPointer)
}

func TestResolvePathUnmapped(t *testing.T) {
	d := newChainDump(t, process.PointerSize64)
	require.NoError(t, d.PutPointer(firstObj+0x8, 0x7000_0000))

	_, err := process.ReadDeep[int32](d, process.NewDeepPointer(0x40, 0x8, 0x10))
	assert.ErrorIs(t, err, process.ErrAddressNotMapped)
}

func TestSingleOffsetIsNotDereferenced(t *testing.T) {
	d := newChainDump(t, process.PointerSize32)
	require.NoError(t, process_blob.Put(d, libBase+0x2F4, true))

	dp := process.NewModuleDeepPointer("LIB.DLL", 0x2F4)
	addr, err := dp.Resolve(d)
	require.NoError(t, err)
	assert.Equal(t, libBase+0x2F4, addr)

	v, err := process.ReadDeep[bool](d, dp)
	require.NoError(t, err)
	assert.True(t, v)
}

func TestMissingModule(t *testing.T) {
	d := newChainDump(t, process.PointerSize32)
	_, err := process.NewModuleDeepPointer("binkw64.dll", 0x10).Resolve(d)
	assert.ErrorIs(t, err, process.ErrModuleNotFound)
}

func TestDeepPointerString(t *testing.T) {
	assert.Equal(t, "main+0xFCCBDC->0xC4", process.NewDeepPointer(0xFCCBDC, 0xC4).String())
	assert.Equal(t, "binkw32.dll+0x312F4", process.NewModuleDeepPointer("binkw32.dll", 0x312F4).String())
	assert.Equal(t, "main", process.NewDeepPointer().String())
}

func TestTrace(t *testing.T) {
	d := newChainDump(t, process.PointerSize64)

	hops, leaf, err := process.NewDeepPointer(0x40, 0x8, 0x10).Trace(d)
	require.NoError(t, err)
	assert.Equal(t, secondObj+0x10, leaf)
	require.Len(t, hops, 2)
	assert.Equal(t, process.Hop{From: mainBase, Offset: 0x40, To: firstObj}, hops[0])
	assert.Equal(t, process.Hop{From: firstObj, Offset: 0x8, To: secondObj}, hops[1])

	require.NoError(t, d.PutPointer(firstObj+0x8, 0))
	hops, _, err = process.NewDeepPointer(0x40, 0x8, 0x10).Trace(d)
	assert.ErrorIs(t, err, process.ErrInvalidPointer)
	assert.Len(t, hops, 2)
}

func TestReadNTS(t *testing.T) {
	d := newChainDump(t, process.PointerSize32)
	require.NoError(t, d.WriteMemory(heapBase+0x900, []byte("abcdefgh")))

	s, err := process.ReadNTS(d, heapBase+0x900, 4)
	require.NoError(t, err)
	assert.Equal(t, "abcd", s, "no terminator inside the limit keeps the whole buffer")

	s, err = process.ReadNTS(d, heapBase+0x900, 0)
	require.NoError(t, err)
	assert.Empty(t, s)

	assert.Equal(t, "ab", process.TrimNTS([]byte{'a', 'b', 0, 'c'}))
}

func TestNormalizeName(t *testing.T) {
	for _, name := range []string{"Dishonored.exe", `C:\Games\Dishonored.exe`, "/opt/wine/Dishonored.EXE", "dishonored"} {
		assert.Equal(t, "dishonored", process.NormalizeName(name), name)
	}
	assert.Equal(t, "dishonored2", process.NormalizeName("Dishonored2.exe"))
}

func TestFindModuleIgnoresCase(t *testing.T) {
	modules := []process.ModuleInfo{{Name: "Dishonored.exe", Base: mainBase, Size: 0x1000}, {Name: "binkw32.dll", Base: libBase}}

	m, ok := process.FindModule(modules, "BINKW32.DLL")
	require.True(t, ok)
	assert.Equal(t, libBase, m.Base)

	_, ok = process.FindModule(modules, "binkw64.dll")
	assert.False(t, ok)

	assert.Equal(t, mainBase+0x1000, modules[0].End())
}
