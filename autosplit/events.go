// Package autosplit turns snapshots of the game's memory into timer events.
package autosplit

import (
	"fmt"
	"strings"
)

// EventKind is the kind of a state transition reported to the timer.
type EventKind int

const (
	FirstLevelLoading EventKind = iota + 1
	LoadStarted
	LoadFinished
	PlayerLostControl
	PlayerGainedControl
	AreaCompleted
)

var eventNames = map[EventKind]string{
	FirstLevelLoading:   "FirstLevelLoading",
	LoadStarted:         "LoadStarted",
	LoadFinished:        "LoadFinished",
	PlayerLostControl:   "PlayerLostControl",
	PlayerGainedControl: "PlayerGainedControl",
	AreaCompleted:       "AreaCompleted",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// AreaCompletionType names the area an AreaCompleted event finished.
type AreaCompletionType int

const (
	None AreaCompletionType = iota
	IntroEnd
	MissionEnd
	PrisonEscape
	OutsidersDream
	Weepers
)

var areaNames = []string{"None", "IntroEnd", "MissionEnd", "PrisonEscape", "OutsidersDream", "Weepers"}

func (a AreaCompletionType) String() string {
	if a >= 0 && int(a) < len(areaNames) {
		return areaNames[a]
	}
	return fmt.Sprintf("AreaCompletionType(%d)", int(a))
}

func (a AreaCompletionType) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// ParseAreaCompletionType is the inverse of AreaCompletionType.String, case-insensitive.
func ParseAreaCompletionType(s string) (AreaCompletionType, error) {
	for i, name := range areaNames {
		if strings.EqualFold(name, s) {
			return AreaCompletionType(i), nil
		}
	}
	return None, fmt.Errorf("unknown area completion type %q", s)
}

// Event is one notification for the timer. Area is only set for AreaCompleted.
type Event struct {
	Kind EventKind          `json:"event"`
	Area AreaCompletionType `json:"area,omitempty"`
}

func (e Event) String() string {
	if e.Kind == AreaCompleted {
		return fmt.Sprintf("%s(%s)", e.Kind, e.Area)
	}
	return e.Kind.String()
}

// areaCompletion maps a "<cinematic>|<level name prefix>" key to the area it completes.
type areaCompletion struct {
	key  string
	area AreaCompletionType
}

// Searched in order, the first matching key wins.
var areaCompletions = []areaCompletion{
	{"LoadingSewers|L_Prison_", PrisonEscape},
	{"LoadingStreets|L_Pub_Dusk_", OutsidersDream},
	{"LoadingStreets|L_Pub_Day_", Weepers},
}

// LookupAreaCompletion matches "movie|level" case-insensitively against the
// area completion keys by prefix. It returns None when nothing matches.
func LookupAreaCompletion(movie, level string) AreaCompletionType {
	live := strings.ToLower(movie + "|" + level)
	for _, c := range areaCompletions {
		if strings.HasPrefix(live, strings.ToLower(c.key)) {
			return c.area
		}
	}
	return None
}
