package splits

import (
	"github.com/rythin-sr/LiveSplit.Dishonored/autosplit"
)

// Controller is the timer being driven.
type Controller interface {
	Reset()
	Start()
	Split()
	SetGameTimePaused(paused bool)
}

// SettingsSource supplies the settings in effect when an event is handled.
type SettingsSource interface {
	Get() Settings
}

// Dispatcher forwards events to a Controller, gated by the current settings.
type Dispatcher struct {
	controller Controller
	settings   SettingsSource
}

func NewDispatcher(controller Controller, settings SettingsSource) *Dispatcher {
	return &Dispatcher{controller: controller, settings: settings}
}

// Handle applies one event.
func (d *Dispatcher) Handle(e autosplit.Event) {
	s := d.settings.Get()

	switch e.Kind {
	case autosplit.FirstLevelLoading:
		if s.AutoStartEnd {
			d.controller.Reset()
		}
	case autosplit.PlayerGainedControl:
		if s.AutoStartEnd {
			d.controller.Start()
		}
	case autosplit.LoadStarted:
		d.controller.SetGameTimePaused(true)
	case autosplit.LoadFinished:
		d.controller.SetGameTimePaused(false)
	case autosplit.PlayerLostControl:
		if s.AutoStartEnd {
			d.controller.Split()
		}
	case autosplit.AreaCompleted:
		if s.SplitsOn(e.Area) {
			d.controller.Split()
		}
	}
}
