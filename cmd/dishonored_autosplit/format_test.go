package main

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rythin-sr/LiveSplit.Dishonored/autosplit"
	"github.com/rythin-sr/LiveSplit.Dishonored/splits"
)

var at = time.Date(2026, 3, 14, 20, 15, 30, 0, time.UTC)

func TestOutputJSON(t *testing.T) {
	rec := EventRecord{
		Time:     at,
		Event:    autosplit.AreaCompleted,
		Area:     autosplit.PrisonEscape,
		Phase:    "Running",
		Splits:   2,
		RealTime: "0:12:01.500",
		GameTime: "0:11:40.000",
	}

	var buf bytes.Buffer
	require.NoError(t, OutputEvent("jsonl", rec, &buf))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "AreaCompleted", got["event"])
	assert.Equal(t, "PrisonEscape", got["area"])
	assert.Equal(t, "Running", got["phase"])
	assert.Equal(t, float64(2), got["splits"])
	assert.Equal(t, "0:11:40.000", got["game_time"])
	assert.Equal(t, byte('\n'), buf.Bytes()[buf.Len()-1])
}

func TestOutputJSONOmitsNoArea(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, OutputJSON(EventRecord{Time: at, Event: autosplit.LoadStarted}, &buf))
	assert.NotContains(t, buf.String(), `"area"`)
	assert.Contains(t, buf.String(), `"event":"LoadStarted"`)
}

func TestOutputPretty(t *testing.T) {
	tests := []struct {
		name string
		rec  EventRecord
		want string
	}{
		{
			name: "plain event",
			rec:  EventRecord{Time: at, Event: autosplit.PlayerGainedControl, Phase: "Running", RealTime: "0:00:00.000", GameTime: "0:00:00.000"},
			want: "[20:15:30] PlayerGainedControl",
		},
		{
			name: "area",
			rec:  EventRecord{Time: at, Event: autosplit.AreaCompleted, Area: autosplit.Weepers, Phase: "Ended", RealTime: "1:02:03.004", GameTime: "0:59:00.000"},
			want: "[20:15:30] AreaCompleted(Weepers)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, OutputPretty(tt.rec, &buf))
			assert.Contains(t, buf.String(), tt.want)
			assert.Contains(t, buf.String(), tt.rec.Phase)
			assert.Contains(t, buf.String(), "rt "+tt.rec.RealTime)
			assert.Contains(t, buf.String(), "gt "+tt.rec.GameTime)
		})
	}
}

func TestOutputEventUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := OutputEvent("xml", EventRecord{}, &buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
	assert.Zero(t, buf.Len())
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0:00:00.000", formatDuration(0))
	assert.Equal(t, "0:00:00.000", formatDuration(-time.Second))
	assert.Equal(t, "0:01:05.250", formatDuration(65*time.Second+250*time.Millisecond))
	assert.Equal(t, "2:03:04.005", formatDuration(2*time.Hour+3*time.Minute+4*time.Second+5*time.Millisecond))
}

func TestNewEventRecord(t *testing.T) {
	now := at
	sw := splits.NewStopwatch(0).WithClock(func() time.Time { return now })
	sw.Start()
	now = now.Add(90 * time.Second)
	sw.Split()

	rec := NewEventRecord(now, autosplit.Event{Kind: autosplit.AreaCompleted, Area: autosplit.MissionEnd}, sw)
	assert.Equal(t, "Running", rec.Phase)
	assert.Equal(t, 1, rec.Splits)
	assert.Equal(t, "0:01:30.000", rec.RealTime)
	assert.Equal(t, "0:01:30.000", rec.GameTime)
	assert.Equal(t, autosplit.MissionEnd, rec.Area)
}
