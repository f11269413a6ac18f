package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/rythin-sr/LiveSplit.Dishonored/autosplit"
	"github.com/rythin-sr/LiveSplit.Dishonored/config"
	"github.com/rythin-sr/LiveSplit.Dishonored/splits"
)

// EventRecord is one emitted event together with the timer state after it was applied.
type EventRecord struct {
	Time     time.Time                    `json:"time"`
	Event    autosplit.EventKind          `json:"event"`
	Area     autosplit.AreaCompletionType `json:"area,omitempty"`
	Phase    string                       `json:"phase"`
	Splits   int                          `json:"splits"`
	RealTime string                       `json:"real_time"`
	GameTime string                       `json:"game_time"`
}

// NewEventRecord captures the stopwatch state for e.
func NewEventRecord(at time.Time, e autosplit.Event, sw *splits.Stopwatch) EventRecord {
	realTime, gameTime := sw.Times()
	return EventRecord{
		Time:     at,
		Event:    e.Kind,
		Area:     e.Area,
		Phase:    sw.Phase().String(),
		Splits:   len(sw.Splits()),
		RealTime: formatDuration(realTime),
		GameTime: formatDuration(gameTime),
	}
}

// OutputEvent writes a record in the specified format to the writer.
func OutputEvent(format string, rec EventRecord, out io.Writer) error {
	switch format {
	case config.FormatJSONL:
		return OutputJSON(rec, out)
	case config.FormatPretty:
		return OutputPretty(rec, out)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// OutputJSON writes a record as JSON Lines format.
func OutputJSON(rec EventRecord, out io.Writer) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

// OutputPretty writes a record in human-readable format.
func OutputPretty(rec EventRecord, out io.Writer) error {
	ts := rec.Time.Format("15:04:05")

	name := rec.Event.String()
	if rec.Event == autosplit.AreaCompleted {
		name = fmt.Sprintf("%s(%s)", rec.Event, rec.Area)
	}

	_, err := fmt.Fprintf(out, "[%s] %-30s %-10s rt %s  gt %s\n", ts, name, rec.Phase, rec.RealTime, rec.GameTime)
	return err
}

// formatDuration renders d as h:mm:ss.mmm.
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	return fmt.Sprintf("%d:%02d:%02d.%03d", ms/3_600_000, ms/60_000%60, ms/1000%60, ms%1000)
}
