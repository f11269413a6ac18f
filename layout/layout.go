// Package layout holds the memory layout of every supported Dishonored build.
package layout

import (
	"fmt"

	"github.com/rythin-sr/LiveSplit.Dishonored/process"
)

// GameVersion identifies one known binary layout of the game.
type GameVersion int

const (
	V1             GameVersion = iota // 1.2, 32-bit
	V2                                // 1.4 (Steam and Reloaded builds), 32-bit
	V3Distribution                    // Epic Games Store build, 64-bit
)

func (v GameVersion) String() string {
	switch v {
	case V1:
		return "1.2"
	case V2:
		return "1.4"
	case V3Distribution:
		return "EGS"
	default:
		return fmt.Sprintf("GameVersion(%d)", int(v))
	}
}

// Movie playback libraries and their known sizes in memory.
const (
	MovieLibrary32 = "binkw32.dll"
	MovieLibrary64 = "binkw64.dll"

	MovieLibrary32Size process.ProcessMemorySize = 241_664
	MovieLibrary64Size process.ProcessMemorySize = 364_544
)

// MovieLibraries lists the module names the locator looks for.
var MovieLibraries = []string{MovieLibrary32, MovieLibrary64}

// Sizes of the string fields read from memory.
const (
	MovieNameLength process.ProcessMemorySize = 64
	LevelNameLength process.ProcessMemorySize = 32

	levelNameOffset process.ProcessMemorySize = 0x10
	levelIDStride                             = 4
)

// Layout is one row of the layout table: where each watched value lives for
// a given build, and the module sizes that fingerprint the build.
type Layout struct {
	Version GameVersion

	PlayerPosX              process.DeepPointer // float32
	IsLoading               process.DeepPointer // bool, in the movie library
	CurrentLevel            process.DeepPointer // int32 level id
	CurrentBikMovie         process.DeepPointer // 64 byte string
	CutsceneActive          process.DeepPointer // bool
	MissionStatsScreenFlags process.DeepPointer // int32 bit flags

	// StringTableBase is relative to the main module
	StringTableBase process.ProcessMemorySize

	ExeSizes []process.ProcessMemorySize
}

// LevelName returns the string table path of the name of level id.
// The id offset is signed, a negative id reads before the table start.
func (l Layout) LevelName(id int32) process.DeepPointer {
	return process.NewDeepPointer(
		l.StringTableBase,
		process.ProcessMemorySize(int64(id)*levelIDStride),
		levelNameOffset,
	)
}

// MatchesExeSize reports whether size is one of the executable sizes of this build.
func (l Layout) MatchesExeSize(size process.ProcessMemorySize) bool {
	for _, s := range l.ExeSizes {
		if s == size {
			return true
		}
	}
	return false
}

var dp = process.NewDeepPointer

// Table lists every supported build, the locator selects a row by executable size.
var Table = []Layout{
	{
		Version:                 V1,
		PlayerPosX:              dp(0xFCCBDC, 0xC4),
		IsLoading:               process.NewModuleDeepPointer(MovieLibrary32, 0x312F4),
		CurrentLevel:            dp(0xFB7838, 0x2C0, 0x314, 0, 0x38),
		CurrentBikMovie:         dp(0xFC6AD4, 0x48, 0),
		CutsceneActive:          dp(0xFB51CC, 0x744),
		MissionStatsScreenFlags: dp(0xFDEB08, 0x24, 0x41C, 0x2E0, 0xC4),
		StringTableBase:         0xFA3624,
		ExeSizes:                []process.ProcessMemorySize{18_219_008},
	},
	{
		Version:                 V2,
		PlayerPosX:              dp(0x1052DE8, 0xC4),
		IsLoading:               process.NewModuleDeepPointer(MovieLibrary32, 0x312F4),
		CurrentLevel:            dp(0x103D878, 0x2C0, 0x314, 0, 0x38),
		CurrentBikMovie:         dp(0x104CB18, 0x48, 0),
		CutsceneActive:          dp(0x103B20C, 0x744),
		MissionStatsScreenFlags: dp(0x1065184, 0x24, 0x41C, 0x2F4, 0xC4),
		StringTableBase:         0x1029664,
		ExeSizes:                []process.ProcessMemorySize{18_862_080, 19_427_328}, // Reloaded, Steam
	},
	{
		Version:                 V3Distribution,
		PlayerPosX:              dp(0x1815310, 0xB0),
		IsLoading:               process.NewModuleDeepPointer(MovieLibrary64, 0x31494),
		CurrentLevel:            dp(0x1815310, 0x1A0, 0x5B8),
		CurrentBikMovie:         dp(0x1810348, 0x48, 0),
		CutsceneActive:          dp(0x1802D88, 0x9EC),
		MissionStatsScreenFlags: dp(0x18292F8, 0x3C, 0x550, 0x520, 0x110),
		StringTableBase:         0x3804014,
		ExeSizes:                []process.ProcessMemorySize{27_553_792},
	},
}

// ForExeSize returns the layout whose executable size matches size.
func ForExeSize(size process.ProcessMemorySize) (Layout, bool) {
	for _, l := range Table {
		if l.MatchesExeSize(size) {
			return l, true
		}
	}
	return Layout{}, false
}

// ForVersion returns the layout of version v.
func ForVersion(v GameVersion) (Layout, bool) {
	for _, l := range Table {
		if l.Version == v {
			return l, true
		}
	}
	return Layout{}, false
}

// IsKnownMovieLibrarySize reports whether size matches either movie library build.
func IsKnownMovieLibrarySize(size process.ProcessMemorySize) bool {
	return size == MovieLibrary32Size || size == MovieLibrary64Size
}
