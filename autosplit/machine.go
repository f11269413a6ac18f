package autosplit

import (
	"strings"

	"github.com/rythin-sr/LiveSplit.Dishonored/watcher"
)

// Cinematic and level names the machine reacts to, as stored by the game.
const (
	movieStudioSplash = "INTRO_LOC"
	movieMainMenu     = "Dishonored"
	moviePrison       = "LoadingPrison"

	levelTower         = "l_tower_p"
	levelTowerPrefix   = "l_tower_"
	levelLightHouse    = "L_LightH_"
	levelKnifeIntro    = "L_DLC07_BaseIntro_P"
	levelBrigmoreIntro = "DLC06_Tower_P"

	// player X right after spawning in the tower level
	towerSpawnMinX = 9826.0
	towerSpawnMaxX = 9826.5
)

// Levels that start a run.
var firstLevels = map[string]bool{
	levelKnifeIntro:    true,
	levelBrigmoreIntro: true,
}

// gainedControl lists cinematic and level pairs that end with the player in
// control after a load.
var gainedControl = []struct{ movie, level string }{
	{"LoadingEmpressTower", levelTower},
	{movieStudioSplash, levelTower},
	{"Loading", levelBrigmoreIntro},
	{"LoadingDLC06Tower", levelBrigmoreIntro},
}

func isGainedControl(movie, level string) bool {
	for _, sig := range gainedControl {
		if sig.movie == movie && sig.level == level {
			return true
		}
	}
	return false
}

// Machine interprets consecutive frames. Its latches live as long as the
// machine, they are not reset when the game process changes.
type Machine struct {
	loadStarted  bool
	oncePerLevel bool
}

// LoadStarted reports whether a load is open and waiting for its end.
func (m *Machine) LoadStarted() bool { return m.loadStarted }

// OncePerLevel reports whether the per level latch is still armed.
func (m *Machine) OncePerLevel() bool { return m.oncePerLevel }

// Update evaluates one frame and returns its events in emission order.
// A frame without changes yields no events.
func (m *Machine) Update(f watcher.Frame) []Event {
	var events []Event
	emit := func(kind EventKind, area AreaCompletionType) {
		events = append(events, Event{Kind: kind, Area: area})
	}

	movie := f.CurrentBikMovie
	level := f.LevelName.Current

	// two cinematics play back to back at the end of the intro and the loading
	// flag can miss the boundary between them
	if movie.Changed && movie.Old != "" {
		if movie.Old == movieMainMenu && movie.Current == moviePrison {
			m.loadStarted = true
			emit(LoadStarted, None)
			emit(AreaCompleted, IntroEnd)
		}
	}

	if f.CurrentLevel.Changed && !f.CurrentLevel.Failed {
		if firstLevels[level] {
			emit(FirstLevelLoading, None)
		}
		m.oncePerLevel = true
	}

	// the load edge is classified by cinematic name, a stale name is not trusted
	if f.IsLoading.Changed {
		if f.IsLoading.Current && !movie.Failed {
			if movie.Current != movieStudioSplash && movie.Current != movieMainMenu &&
				!(movie.Current == moviePrison && strings.HasPrefix(strings.ToLower(level), levelTowerPrefix)) {
				m.loadStarted = true
				emit(LoadStarted, None)
			}
			if area := LookupAreaCompletion(movie.Current, level); area != None {
				emit(AreaCompleted, area)
			}
		} else if !f.IsLoading.Current {
			if m.loadStarted {
				m.loadStarted = false
				emit(LoadFinished, None)
			}
			if !movie.Failed && isGainedControl(movie.Current, level) {
				emit(PlayerGainedControl, None)
			}
		}
	}

	x := f.PlayerPosX
	if x.Changed && x.Old == 0 && m.loadStarted &&
		x.Current > towerSpawnMinX && x.Current < towerSpawnMaxX && level == levelTower {
		emit(FirstLevelLoading, None)
	}

	if f.CutsceneActive.Changed {
		if f.CutsceneActive.Current {
			if strings.HasPrefix(level, levelLightHouse) {
				emit(PlayerLostControl, None)
			}
		} else if level == levelKnifeIntro && m.oncePerLevel {
			m.oncePerLevel = false
			emit(PlayerGainedControl, None)
		}
	}

	if active := f.MissionStatsScreenActive; active.Changed && active.Current {
		emit(AreaCompleted, MissionEnd)
	}

	return events
}
