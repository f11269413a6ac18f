// Package fakegame builds synthetic game process images laid out per a layout row.
package fakegame

import (
	"github.com/rythin-sr/LiveSplit.Dishonored/layout"
	"github.com/rythin-sr/LiveSplit.Dishonored/process"
	"github.com/rythin-sr/LiveSplit.Dishonored/process_blob"
)

const (
	PID = process.ProcessID(4242)

	MainBase  process.ProcessMemoryAddress = 0x00400000
	MovieBase process.ProcessMemoryAddress = 0x10000000
	heapBase  process.ProcessMemoryAddress = 0x20000000

	page       = 0x1000
	objectSize = 0x1000
	heapSize   = 0x200000
)

// Game is a process image whose watched values can be set directly.
type Game struct {
	Dump   *process_blob.ProcessDump
	Layout layout.Layout

	heapNext process.ProcessMemoryAddress
	broken   map[process.ProcessMemoryAddress]process.ProcessMemoryAddress
}

// New lays out an empty game for l: main module and movie library with the
// expected sizes, every chain resolvable, every value zero.
func New(l layout.Layout) *Game {
	dump := process_blob.NewProcessDump()
	dump.PID = PID
	dump.Name = "Dishonored.exe"

	movie := l.IsLoading.Module
	movieSize := layout.MovieLibrary32Size
	dump.PtrSize = process.PointerSize32
	if movie == layout.MovieLibrary64 {
		movieSize = layout.MovieLibrary64Size
		dump.PtrSize = process.PointerSize64
	}

	dump.RegisterModule("Dishonored.exe", MainBase, l.ExeSizes[0])
	dump.RegisterModule(movie, MovieBase, movieSize)
	dump.AddRegion(heapBase, heapSize)

	g := &Game{
		Dump:     dump,
		Layout:   l,
		heapNext: heapBase,
		broken:   map[process.ProcessMemoryAddress]process.ProcessMemoryAddress{},
	}
	for _, dp := range []process.DeepPointer{
		l.PlayerPosX, l.IsLoading, l.CurrentLevel, l.CurrentBikMovie, l.CutsceneActive, l.MissionStatsScreenFlags,
	} {
		g.leaf(dp)
	}
	return g
}

// ForVersion is New for the table row of v.
func ForVersion(v layout.GameVersion) *Game {
	l, ok := layout.ForVersion(v)
	if !ok {
		panic("fakegame: unknown version " + v.String())
	}
	return New(l)
}

func must(err error) {
	if err != nil {
		panic("fakegame: " + err.Error())
	}
}

func (g *Game) alloc() process.ProcessMemoryAddress {
	addr := g.heapNext
	g.heapNext += objectSize
	if g.heapNext > heapBase+heapSize {
		panic("fakegame: heap exhausted")
	}
	return addr
}

func (g *Game) ensureMapped(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) {
	for p := addr &^ (page - 1); p < addr.Offset(size); p += page {
		if !g.Dump.IsValidAddress(p) {
			g.Dump.AddRegion(p, page)
		}
	}
}

func (g *Game) moduleBase(dp process.DeepPointer) process.ProcessMemoryAddress {
	base, err := dp.Base(g.Dump)
	must(err)
	return base
}

// slots returns the address of every pointer dp dereferences and of its leaf,
// allocating objects for pointers that are still null.
func (g *Game) slots(dp process.DeepPointer) ([]process.ProcessMemoryAddress, process.ProcessMemoryAddress) {
	cur := g.moduleBase(dp)
	var slots []process.ProcessMemoryAddress
	for i := 0; i < len(dp.Offsets)-1; i++ {
		slot := cur.Offset(dp.Offsets[i])
		g.ensureMapped(slot, g.Dump.PtrSize)

		ptr, err := process.ReadPointer(g.Dump, slot)
		must(err)
		if ptr == 0 {
			if saved, ok := g.broken[slot]; ok {
				ptr = saved
			} else {
				ptr = g.alloc()
			}
			must(g.Dump.PutPointer(slot, ptr))
		}
		slots = append(slots, slot)
		cur = ptr
	}
	leaf := cur.Offset(dp.Offsets[len(dp.Offsets)-1])
	g.ensureMapped(leaf, 8)
	return slots, leaf
}

func (g *Game) leaf(dp process.DeepPointer) process.ProcessMemoryAddress {
	_, leaf := g.slots(dp)
	return leaf
}

func (g *Game) SetPlayerX(x float32) {
	must(process_blob.Put(g.Dump, g.leaf(g.Layout.PlayerPosX), x))
}

func (g *Game) SetLoading(loading bool) {
	must(process_blob.Put(g.Dump, g.leaf(g.Layout.IsLoading), loading))
}

func (g *Game) SetCutscene(active bool) {
	must(process_blob.Put(g.Dump, g.leaf(g.Layout.CutsceneActive), active))
}

func (g *Game) SetMissionFlags(flags int32) {
	must(process_blob.Put(g.Dump, g.leaf(g.Layout.MissionStatsScreenFlags), flags))
}

// SetMovie writes the current cinematic name.
func (g *Game) SetMovie(name string) {
	leaf := g.leaf(g.Layout.CurrentBikMovie)
	must(g.Dump.WriteMemory(leaf, make([]byte, layout.MovieNameLength)))
	must(g.Dump.PutString(leaf, name))
}

// DefineLevel adds name to the string table under id.
// On 64-bit layouts an entry spans two slots, ids must be at least two apart.
func (g *Game) DefineLevel(id int32, name string) {
	leaf := g.leaf(g.Layout.LevelName(id))
	must(g.Dump.WriteMemory(leaf, make([]byte, layout.LevelNameLength)))
	must(g.Dump.PutString(leaf, name))
}

// SetLevel defines name under id and makes it the current level.
func (g *Game) SetLevel(id int32, name string) {
	g.DefineLevel(id, name)
	g.SetLevelID(id)
}

// SetLevelID changes the current level id only.
func (g *Game) SetLevelID(id int32) {
	must(process_blob.Put(g.Dump, g.leaf(g.Layout.CurrentLevel), id))
}

// BreakChain nulls the last pointer dp dereferences, reads through dp fail until
// RepairChain or any setter writing through dp.
func (g *Game) BreakChain(dp process.DeepPointer) {
	slots, _ := g.slots(dp)
	if len(slots) == 0 {
		return
	}
	slot := slots[len(slots)-1]
	ptr, err := process.ReadPointer(g.Dump, slot)
	must(err)
	g.broken[slot] = ptr
	must(g.Dump.PutPointer(slot, 0))
}

// RepairChain restores pointers nulled by BreakChain.
func (g *Game) RepairChain(dp process.DeepPointer) {
	g.slots(dp)
}

// SetModuleSize overrides the in-memory size reported for a module.
func (g *Game) SetModuleSize(name string, size process.ProcessMemorySize) {
	for i := range g.Dump.Images {
		if g.Dump.Images[i].Name == name {
			g.Dump.Images[i].Size = size
		}
	}
}

// RemoveModule drops a module from the module table.
func (g *Game) RemoveModule(name string) {
	images := g.Dump.Images[:0]
	for _, m := range g.Dump.Images {
		if m.Name != name {
			images = append(images, m)
		}
	}
	g.Dump.Images = images
}
