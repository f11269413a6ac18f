package splits

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rythin-sr/LiveSplit.Dishonored/autosplit"
)

type recordingController struct {
	calls []string
}

func (c *recordingController) Reset() { c.calls = append(c.calls, "reset") }
func (c *recordingController) Start() { c.calls = append(c.calls, "start") }
func (c *recordingController) Split() { c.calls = append(c.calls, "split") }
func (c *recordingController) SetGameTimePaused(paused bool) {
	if paused {
		c.calls = append(c.calls, "pause")
	} else {
		c.calls = append(c.calls, "resume")
	}
}

func allEvents() []autosplit.Event {
	return []autosplit.Event{
		{Kind: autosplit.FirstLevelLoading},
		{Kind: autosplit.PlayerGainedControl},
		{Kind: autosplit.LoadStarted},
		{Kind: autosplit.LoadFinished},
		{Kind: autosplit.PlayerLostControl},
		{Kind: autosplit.AreaCompleted, Area: autosplit.IntroEnd},
		{Kind: autosplit.AreaCompleted, Area: autosplit.MissionEnd},
		{Kind: autosplit.AreaCompleted, Area: autosplit.PrisonEscape},
		{Kind: autosplit.AreaCompleted, Area: autosplit.OutsidersDream},
		{Kind: autosplit.AreaCompleted, Area: autosplit.Weepers},
	}
}

func TestDispatcherDefaults(t *testing.T) {
	c := &recordingController{}
	d := NewDispatcher(c, NewSettingsStore(DefaultSettings(), ""))
	for _, e := range allEvents() {
		d.Handle(e)
	}
	assert.Equal(t, []string{"reset", "start", "pause", "resume", "split"}, c.calls)
}

func TestDispatcherEverythingOff(t *testing.T) {
	c := &recordingController{}
	d := NewDispatcher(c, NewSettingsStore(Settings{}, ""))
	for _, e := range allEvents() {
		d.Handle(e)
	}
	assert.Equal(t, []string{"pause", "resume"}, c.calls, "load pauses are not optional")
}

func TestDispatcherAreaToggles(t *testing.T) {
	store := NewSettingsStore(Settings{AutoSplitOutsidersDream: true}, "")
	c := &recordingController{}
	d := NewDispatcher(c, store)

	d.Handle(autosplit.Event{Kind: autosplit.AreaCompleted, Area: autosplit.Weepers})
	d.Handle(autosplit.Event{Kind: autosplit.AreaCompleted, Area: autosplit.OutsidersDream})
	assert.Equal(t, []string{"split"}, c.calls)

	// toggles apply from the next event on
	store.Set(Settings{AutoSplitWeepers: true})
	d.Handle(autosplit.Event{Kind: autosplit.AreaCompleted, Area: autosplit.Weepers})
	d.Handle(autosplit.Event{Kind: autosplit.AreaCompleted, Area: autosplit.OutsidersDream})
	assert.Equal(t, []string{"split", "split"}, c.calls)
}
