package autosplit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rythin-sr/LiveSplit.Dishonored/watcher"
)

func stable[T comparable](v T) watcher.Pair[T] {
	return watcher.Pair[T]{Old: v, Current: v}
}

func change[T comparable](old, current T) watcher.Pair[T] {
	return watcher.Pair[T]{Old: old, Current: current, Changed: old != current}
}

// idle is a frame where nothing changed.
func idle(movie, level string) watcher.Frame {
	return watcher.Frame{
		PlayerPosX:               stable(float32(100)),
		IsLoading:                stable(false),
		CurrentLevel:             stable(int32(1)),
		LevelName:                stable(level),
		CurrentBikMovie:          stable(movie),
		CutsceneActive:           stable(false),
		MissionStatsScreenFlags:  stable(int32(0)),
		MissionStatsScreenActive: stable(false),
	}
}

func loadingEdge(movie, level string, loading bool) watcher.Frame {
	f := idle(movie, level)
	f.IsLoading = change(!loading, loading)
	return f
}

func ev(kind EventKind) Event { return Event{Kind: kind} }

func area(a AreaCompletionType) Event { return Event{Kind: AreaCompleted, Area: a} }

func TestStableFrameEmitsNothing(t *testing.T) {
	frames := []watcher.Frame{
		idle("", ""),
		idle("LoadingPrison", "L_Tower_P"),
		idle("LoadingSewers", "L_Prison_P"),
		idle("INTRO_LOC", "l_tower_p"),
		idle("Loading", "DLC06_Tower_P"),
	}
	busy := idle("LoadingStreets", "L_Pub_Day_P")
	busy.IsLoading = stable(true)
	busy.CutsceneActive = stable(true)
	busy.MissionStatsScreenFlags = stable(int32(1))
	busy.MissionStatsScreenActive = stable(true)
	busy.PlayerPosX = stable(float32(9826.25))
	frames = append(frames, busy)

	for _, f := range frames {
		for _, loadStarted := range []bool{false, true} {
			m := &Machine{loadStarted: loadStarted, oncePerLevel: true}
			assert.False(t, f.AnyChanged())
			assert.Empty(t, m.Update(f))
			assert.Equal(t, loadStarted, m.LoadStarted())
			assert.True(t, m.OncePerLevel())
		}
	}
}

func TestIntroEndBackToBackCinematics(t *testing.T) {
	m := &Machine{}

	f := idle("", "L_Tower_P")
	f.CurrentBikMovie = change("Dishonored", "LoadingPrison")
	assert.Equal(t, []Event{ev(LoadStarted), area(IntroEnd)}, m.Update(f))
	assert.True(t, m.LoadStarted())

	// the loading flag raised on the same boundary is not a second load
	f = loadingEdge("LoadingPrison", "L_Tower_P", true)
	assert.Empty(t, m.Update(f))

	f = loadingEdge("LoadingPrison", "l_tower_p", false)
	assert.Equal(t, []Event{ev(LoadFinished)}, m.Update(f))
	assert.False(t, m.LoadStarted())
}

func TestCinematicChangeFromEmptyIsIgnored(t *testing.T) {
	m := &Machine{}
	f := idle("", "")
	f.CurrentBikMovie = change("", "LoadingPrison")
	assert.Empty(t, m.Update(f))

	f.CurrentBikMovie = change("LoadingSewers", "LoadingPrison")
	assert.Empty(t, m.Update(f))
	assert.False(t, m.LoadStarted())
}

func TestLoadStartAreaCompletions(t *testing.T) {
	tests := []struct {
		movie, level string
		want         []Event
	}{
		{"LoadingSewers", "L_Prison_P", []Event{ev(LoadStarted), area(PrisonEscape)}},
		{"loadingsewers", "l_prison_p", []Event{ev(LoadStarted), area(PrisonEscape)}},
		{"LoadingStreets", "L_Pub_Dusk_P", []Event{ev(LoadStarted), area(OutsidersDream)}},
		{"LoadingStreets", "L_Pub_Day_P", []Event{ev(LoadStarted), area(Weepers)}},
		{"LoadingStreets", "L_Pub_Morning_P", []Event{ev(LoadStarted)}},
		{"LoadingSewers", "L_Sewers_P", []Event{ev(LoadStarted)}},
		{"INTRO_LOC", "L_Prison_P", nil},
		{"Dishonored", "L_Tower_P", nil},
		{"LoadingPrison", "L_TOWER_P", nil},
		{"LoadingPrison", "L_Prison_P", []Event{ev(LoadStarted)}},
	}
	for _, tt := range tests {
		t.Run(tt.movie+"|"+tt.level, func(t *testing.T) {
			m := &Machine{}
			assert.Equal(t, tt.want, m.Update(loadingEdge(tt.movie, tt.level, true)))
			assert.Equal(t, len(tt.want) > 0, m.LoadStarted())
		})
	}
}

func TestLoadFinishedOnlyOnce(t *testing.T) {
	m := &Machine{}
	m.Update(loadingEdge("LoadingSewers", "L_Sewers_P", true))
	assert.True(t, m.LoadStarted())

	assert.Equal(t, []Event{ev(LoadFinished)}, m.Update(loadingEdge("LoadingSewers", "L_Sewers_P", false)))
	assert.False(t, m.LoadStarted())

	assert.Empty(t, m.Update(loadingEdge("LoadingSewers", "L_Sewers_P", false)))
}

func TestGainedControlSignatures(t *testing.T) {
	tests := []struct {
		movie, level string
		gained       bool
	}{
		{"LoadingEmpressTower", "l_tower_p", true},
		{"INTRO_LOC", "l_tower_p", true},
		{"Loading", "DLC06_Tower_P", true},
		{"LoadingDLC06Tower", "DLC06_Tower_P", true},
		{"LoadingEmpressTower", "L_Tower_P", false},
		{"Loading", "l_tower_p", false},
		{"LoadingDLC06Tower", "dlc06_tower_p", false},
	}
	for _, tt := range tests {
		t.Run(tt.movie+"|"+tt.level, func(t *testing.T) {
			m := &Machine{loadStarted: true}
			got := m.Update(loadingEdge(tt.movie, tt.level, false))
			want := []Event{ev(LoadFinished)}
			if tt.gained {
				want = append(want, ev(PlayerGainedControl))
			}
			assert.Equal(t, want, got)
		})
	}
}

func TestLoadEdgeWithUnreadableCinematic(t *testing.T) {
	m := &Machine{}
	f := loadingEdge("LoadingSewers", "L_Prison_P", true)
	f.CurrentBikMovie.Failed = true
	assert.Empty(t, m.Update(f))
	assert.False(t, m.LoadStarted())

	m = &Machine{loadStarted: true}
	f = loadingEdge("INTRO_LOC", "l_tower_p", false)
	f.CurrentBikMovie.Failed = true
	assert.Equal(t, []Event{ev(LoadFinished)}, m.Update(f), "finishing a load does not need the cinematic")
	assert.False(t, m.LoadStarted())
}

func TestLevelChange(t *testing.T) {
	m := &Machine{}

	f := idle("", "L_DLC07_BaseIntro_P")
	f.CurrentLevel = change(int32(0), int32(55))
	assert.Equal(t, []Event{ev(FirstLevelLoading)}, m.Update(f))
	assert.True(t, m.OncePerLevel())

	m = &Machine{}
	f = idle("", "DLC06_Tower_P")
	f.CurrentLevel = change(int32(3), int32(56))
	assert.Equal(t, []Event{ev(FirstLevelLoading)}, m.Update(f))

	m = &Machine{}
	f = idle("", "L_Prison_P")
	f.CurrentLevel = change(int32(3), int32(57))
	assert.Empty(t, m.Update(f))
	assert.True(t, m.OncePerLevel(), "every level change arms the latch")
}

func TestFailedLevelReadIsNotALevelChange(t *testing.T) {
	m := &Machine{}
	f := idle("", "")
	f.CurrentLevel = watcher.Pair[int32]{Old: 55, Current: 0, Changed: true, Failed: true}
	f.LevelName = watcher.Pair[string]{Old: "L_DLC07_BaseIntro_P", Current: "", Changed: true, Failed: true}
	assert.Empty(t, m.Update(f))
	assert.False(t, m.OncePerLevel())
}

func TestTowerSpawnPosition(t *testing.T) {
	tests := []struct {
		name        string
		old, x      float32
		loadStarted bool
		level       string
		want        []Event
	}{
		{"spawn", 0, 9826.25, true, "l_tower_p", []Event{ev(FirstLevelLoading)}},
		{"no open load", 0, 9826.25, false, "l_tower_p", nil},
		{"lower bound is open", 0, 9826.0, true, "l_tower_p", nil},
		{"upper bound is open", 0, 9826.5, true, "l_tower_p", nil},
		{"not from zero", 1, 9826.25, true, "l_tower_p", nil},
		{"other level", 0, 9826.25, true, "L_Tower_P", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Machine{loadStarted: tt.loadStarted}
			f := idle("LoadingEmpressTower", tt.level)
			f.PlayerPosX = change(tt.old, tt.x)
			assert.Equal(t, tt.want, m.Update(f))
		})
	}
}

func TestCutscenes(t *testing.T) {
	m := &Machine{}
	f := idle("", "L_LightH_P")
	f.CutsceneActive = change(false, true)
	assert.Equal(t, []Event{ev(PlayerLostControl)}, m.Update(f))

	f.CutsceneActive = change(true, false)
	assert.Empty(t, m.Update(f))

	f = idle("", "L_Streets1_P")
	f.CutsceneActive = change(false, true)
	assert.Empty(t, m.Update(f))
}

func TestKnifeIntroGainedControlOncePerLevel(t *testing.T) {
	m := &Machine{}

	f := idle("", "L_DLC07_BaseIntro_P")
	f.CurrentLevel = change(int32(0), int32(70))
	m.Update(f)

	end := idle("", "L_DLC07_BaseIntro_P")
	end.CutsceneActive = change(true, false)
	assert.Equal(t, []Event{ev(PlayerGainedControl)}, m.Update(end))
	assert.False(t, m.OncePerLevel())

	assert.Empty(t, m.Update(end), "latch is consumed")

	// re-entering the level re-arms it
	f.CurrentLevel = change(int32(70), int32(72))
	m.Update(f)
	assert.Equal(t, []Event{ev(PlayerGainedControl)}, m.Update(end))
}

func TestMissionEnd(t *testing.T) {
	m := &Machine{}

	f := idle("", "L_Streets1_P")
	f.MissionStatsScreenFlags = change(int32(0), int32(1))
	f.MissionStatsScreenActive = change(false, true)
	assert.Equal(t, []Event{area(MissionEnd)}, m.Update(f))

	f.MissionStatsScreenFlags = change(int32(1), int32(3))
	f.MissionStatsScreenActive = stable(true)
	assert.Empty(t, m.Update(f))

	f.MissionStatsScreenFlags = change(int32(3), int32(2))
	f.MissionStatsScreenActive = change(true, false)
	assert.Empty(t, m.Update(f))
}

func TestEmissionOrder(t *testing.T) {
	m := &Machine{}

	f := idle("", "L_DLC07_BaseIntro_P")
	f.CurrentBikMovie = change("Dishonored", "LoadingPrison")
	f.CurrentLevel = change(int32(1), int32(2))
	f.IsLoading = change(true, false)
	f.CutsceneActive = change(true, false)
	f.MissionStatsScreenActive = change(false, true)

	assert.Equal(t, []Event{
		ev(LoadStarted),
		area(IntroEnd),
		ev(FirstLevelLoading),
		ev(LoadFinished),
		ev(PlayerGainedControl),
		area(MissionEnd),
	}, m.Update(f))
}

func TestLookupAreaCompletion(t *testing.T) {
	assert.Equal(t, PrisonEscape, LookupAreaCompletion("LOADINGSEWERS", "L_PRISON_P"))
	assert.Equal(t, Weepers, LookupAreaCompletion("LoadingStreets", "L_Pub_Day_"))
	assert.Equal(t, None, LookupAreaCompletion("LoadingStreets", "L_Pub_"))
	assert.Equal(t, None, LookupAreaCompletion("", ""))
}

func TestEventStrings(t *testing.T) {
	assert.Equal(t, "LoadStarted", ev(LoadStarted).String())
	assert.Equal(t, "AreaCompleted(PrisonEscape)", area(PrisonEscape).String())
	assert.Equal(t, "EventKind(42)", EventKind(42).String())
	assert.Equal(t, "AreaCompletionType(9)", AreaCompletionType(9).String())

	a, err := ParseAreaCompletionType("outsidersdream")
	assert.NoError(t, err)
	assert.Equal(t, OutsidersDream, a)
	_, err = ParseAreaCompletionType("Lighthouse")
	assert.Error(t, err)
}
