package watcher

import (
	"fmt"

	"github.com/rythin-sr/LiveSplit.Dishonored/layout"
	"github.com/rythin-sr/LiveSplit.Dishonored/process"
)

// GameData is the snapshot of every watched value of one game process.
// The field list is fixed, Fields returns it in refresh order.
type GameData struct {
	Layout layout.Layout

	PlayerPosX              *Watcher[float32]
	IsLoading               *Watcher[bool]
	CurrentLevel            *Watcher[int32]
	LevelName               *Watcher[string]
	CurrentBikMovie         *Watcher[string]
	CutsceneActive          *Watcher[bool]
	MissionStatsScreenFlags *Watcher[int32]

	fields []Field
}

// NewGameData binds a fresh snapshot to a layout row.
func NewGameData(l layout.Layout) *GameData {
	d := &GameData{
		Layout:                  l,
		PlayerPosX:              NewScalar[float32]("PlayerPosX", l.PlayerPosX, KeepLast),
		IsLoading:               NewScalar[bool]("IsLoading", l.IsLoading, KeepLast),
		CurrentLevel:            NewScalar[int32]("CurrentLevel", l.CurrentLevel, SetZero),
		CurrentBikMovie:         NewString("CurrentBikMovie", l.CurrentBikMovie, layout.MovieNameLength, KeepLast),
		CutsceneActive:          NewScalar[bool]("CutsceneActive", l.CutsceneActive, KeepLast),
		MissionStatsScreenFlags: NewScalar[int32]("MissionStatsScreenFlags", l.MissionStatsScreenFlags, KeepLast),
	}

	// the name is looked up through the level id read earlier in the same refresh
	d.LevelName = New[string]("LevelName",
		fmt.Sprintf("main+0x%X->4*CurrentLevel->0x10 [%d]", uint64(l.StringTableBase), layout.LevelNameLength),
		SetZero,
		func(proc process.Process) (string, error) {
			if d.CurrentLevel.Failed {
				return "", fmt.Errorf("level id unreadable: %w", d.CurrentLevel.Err())
			}
			return process.ReadDeepNTS(proc, l.LevelName(d.CurrentLevel.Current), layout.LevelNameLength)
		})

	d.fields = []Field{
		d.PlayerPosX,
		d.IsLoading,
		d.CurrentLevel,
		d.LevelName,
		d.CurrentBikMovie,
		d.CutsceneActive,
		d.MissionStatsScreenFlags,
	}
	return d
}

// Update refreshes every field once, in order.
func (d *GameData) Update(proc process.Process) {
	for _, f := range d.fields {
		f.Update(proc)
	}
}

// Fields lists the watchers in refresh order.
func (d *GameData) Fields() []Field {
	return d.fields
}

// Pointer returns the path the named field is read through. LevelName follows
// the level id of the last refresh and has no path while that id is unreadable.
func (d *GameData) Pointer(name string) (process.DeepPointer, bool) {
	l := d.Layout
	switch name {
	case d.PlayerPosX.Name():
		return l.PlayerPosX, true
	case d.IsLoading.Name():
		return l.IsLoading, true
	case d.CurrentLevel.Name():
		return l.CurrentLevel, true
	case d.LevelName.Name():
		if d.CurrentLevel.Failed {
			return process.DeepPointer{}, false
		}
		return l.LevelName(d.CurrentLevel.Current), true
	case d.CurrentBikMovie.Name():
		return l.CurrentBikMovie, true
	case d.CutsceneActive.Name():
		return l.CutsceneActive, true
	case d.MissionStatsScreenFlags.Name():
		return l.MissionStatsScreenFlags, true
	}
	return process.DeepPointer{}, false
}

// MissionStatsScreenActive is derived from bit 0 of the mission flags, no memory read of its own.
func (d *GameData) MissionStatsScreenActive() Pair[bool] {
	flags := d.MissionStatsScreenFlags
	p := Pair[bool]{
		Old:     flags.Old&1 != 0,
		Current: flags.Current&1 != 0,
		Failed:  flags.Failed,
	}
	p.Changed = p.Old != p.Current
	return p
}

// Frame copies the pairs of the last refresh.
func (d *GameData) Frame() Frame {
	return Frame{
		PlayerPosX:               d.PlayerPosX.Snapshot(),
		IsLoading:                d.IsLoading.Snapshot(),
		CurrentLevel:             d.CurrentLevel.Snapshot(),
		LevelName:                d.LevelName.Snapshot(),
		CurrentBikMovie:          d.CurrentBikMovie.Snapshot(),
		CutsceneActive:           d.CutsceneActive.Snapshot(),
		MissionStatsScreenFlags:  d.MissionStatsScreenFlags.Snapshot(),
		MissionStatsScreenActive: d.MissionStatsScreenActive(),
	}
}

// Frame is an immutable copy of one refreshed snapshot.
type Frame struct {
	PlayerPosX               Pair[float32]
	IsLoading                Pair[bool]
	CurrentLevel             Pair[int32]
	LevelName                Pair[string]
	CurrentBikMovie          Pair[string]
	CutsceneActive           Pair[bool]
	MissionStatsScreenFlags  Pair[int32]
	MissionStatsScreenActive Pair[bool]
}

// AnyChanged reports whether any field changed in this frame.
func (f Frame) AnyChanged() bool {
	return f.PlayerPosX.Changed ||
		f.IsLoading.Changed ||
		f.CurrentLevel.Changed ||
		f.LevelName.Changed ||
		f.CurrentBikMovie.Changed ||
		f.CutsceneActive.Changed ||
		f.MissionStatsScreenFlags.Changed ||
		f.MissionStatsScreenActive.Changed
}
