package autosplit

import (
	"context"
	"errors"
	"time"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"

	"github.com/rythin-sr/LiveSplit.Dishonored/locator"
	"github.com/rythin-sr/LiveSplit.Dishonored/watcher"
)

// GameMemory drives one poll cycle at a time: bind when needed, refresh the
// snapshot, run the machine. It is not safe for concurrent use.
type GameMemory struct {
	locator *locator.Locator
	binding *locator.Binding
	machine Machine
	log     *logger.Logger
}

func NewGameMemory(loc *locator.Locator) *GameMemory {
	return &GameMemory{
		locator: loc,
		log:     logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "autosplit")),
	}
}

// Binding returns the attached process, nil while searching.
func (g *GameMemory) Binding() *locator.Binding {
	return g.binding
}

// Machine exposes the latches for inspection.
func (g *GameMemory) Machine() *Machine {
	return &g.machine
}

// Update runs one poll cycle and returns the events it produced, in order.
// Errors are never returned, an unusable process means no events this cycle.
func (g *GameMemory) Update() []Event {
	if g.binding.Exited() {
		if g.binding != nil {
			g.log.Infoln("game process", g.binding.Process.GetPID(), "exited")
			g.binding.Close()
			g.binding = nil
		}

		binding, err := g.locator.Locate()
		if err != nil {
			if !errors.Is(err, locator.ErrProcessNotFound) {
				g.log.Debugln("locate:", err)
			}
			return nil
		}
		g.binding = binding
	}

	g.binding.Data.Update(g.binding.Process)
	frame := g.binding.Data.Frame()
	g.trace(frame)

	events := g.machine.Update(frame)
	for _, e := range events {
		g.log.Infoln("event", e)
	}
	return events
}

func (g *GameMemory) trace(f watcher.Frame) {
	if f.CurrentBikMovie.Changed && f.CurrentBikMovie.Old != "" {
		g.log.Debugln("movie changed", f.CurrentBikMovie.Old, "->", f.CurrentBikMovie.Current)
	}
	if f.CurrentLevel.Changed {
		g.log.Debugln("level changed", f.CurrentLevel.Old, "->", f.CurrentLevel.Current, f.LevelName.Current)
	}
	if f.IsLoading.Changed {
		edge := "load end"
		if f.IsLoading.Current {
			edge = "load start"
		}
		g.log.Debugln(edge, f.CurrentBikMovie.Current+"|"+f.LevelName.Current)
	}
	if f.CutsceneActive.Changed {
		g.log.Debugln("in-game cutscene active", f.CutsceneActive.Current)
	}
}

// Run polls every interval until ctx is done, handing each event to handle
// synchronously. Ticks that fall due while a cycle is still running are dropped.
func (g *GameMemory) Run(ctx context.Context, interval time.Duration, handle func(Event)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			for _, e := range g.Update() {
				handle(e)
			}
		}
	}
}

// Close releases the attached process.
func (g *GameMemory) Close() error {
	if g.binding == nil {
		return nil
	}
	err := g.binding.Close()
	g.binding = nil
	return err
}
