package main

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rythin-sr/LiveSplit.Dishonored/config"
	"github.com/rythin-sr/LiveSplit.Dishonored/internal/fakegame"
	"github.com/rythin-sr/LiveSplit.Dishonored/layout"
	"github.com/rythin-sr/LiveSplit.Dishonored/locator"
	"github.com/rythin-sr/LiveSplit.Dishonored/process"
)

func useFakeGame(t *testing.T, g *fakegame.Game) *fakegame.Helper {
	t.Helper()
	h := fakegame.NewHelper()
	h.Add(fakegame.PID, "Dishonored.exe", g)

	prevHelper, prevCfg := newHelper, cfg
	newHelper = func() process.ProcessHelper { return h }
	cfg = config.Config{ProcessName: "dishonored", PollInterval: 15 * time.Millisecond, Format: config.FormatPretty}
	t.Cleanup(func() {
		newHelper, cfg = prevHelper, prevCfg
	})
	return h
}

func TestWriteLayouts(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeLayouts(&buf, layout.Table))

	out := buf.String()
	assert.Contains(t, out, "1.2 (executable size 18219008, binkw32.dll)")
	assert.Contains(t, out, "1.4 (executable size 18862080 or 19427328, binkw32.dll)")
	assert.Contains(t, out, "EGS (executable size 27553792, binkw64.dll)")
	assert.Contains(t, out, "binkw64.dll+0x31494")
	assert.Contains(t, out, "main+0x3804014")
	assert.Contains(t, out, "  MissionStatsScreenFlags  main+0x18292F8->0x3C->0x550->0x520->0x110")
}

func TestWriteFieldsColorsErrors(t *testing.T) {
	g := fakegame.ForVersion(layout.V3Distribution)
	g.BreakChain(g.Layout.PlayerPosX)
	useFakeGame(t, g)

	binding, err := openBinding("", 0)
	require.NoError(t, err)
	binding.Data.Update(binding.Process)

	var buf bytes.Buffer
	require.NoError(t, writeFields(&buf, binding.Data.Fields(), false))
	assert.Contains(t, buf.String(), "\x1b[")
}

func TestProbeLiveProcess(t *testing.T) {
	g := fakegame.ForVersion(layout.V2)
	g.SetMovie("LoadingPrison")
	g.SetLevel(3, "L_Prison_P")
	g.SetPlayerX(9826.25)
	h := useFakeGame(t, g)

	binding, err := openBinding("", 0)
	require.NoError(t, err)
	defer binding.Close()
	assert.Equal(t, 1, h.Opened(fakegame.PID))

	binding.Data.Update(binding.Process)

	var buf bytes.Buffer
	require.NoError(t, writeFields(&buf, binding.Data.Fields(), true))
	out := buf.String()
	assert.Contains(t, out, "FIELD")
	assert.Contains(t, out, `"LoadingPrison"`)
	assert.Contains(t, out, `"L_Prison_P"`)
	assert.Contains(t, out, "9826.250")
	assert.Contains(t, out, "3 (0x3)")
	assert.Contains(t, out, "main+0x104CB18->0x48->0x0")
}

func TestProbeNoProcess(t *testing.T) {
	useFakeGame(t, fakegame.ForVersion(layout.V1))
	cfg.ProcessName = "something_else"

	_, err := openBinding("", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "something_else")
}

func TestOpenBindingByPID(t *testing.T) {
	h := useFakeGame(t, fakegame.ForVersion(layout.V1))
	h.Add(fakegame.PID+1, "Dishonored.exe", fakegame.ForVersion(layout.V3Distribution))

	binding, err := openBinding("", fakegame.PID+1)
	require.NoError(t, err)
	defer binding.Close()
	assert.Equal(t, layout.V3Distribution, binding.Layout.Version)
	assert.Zero(t, h.Opened(fakegame.PID))

	_, err = openBinding("", fakegame.PID+2)
	require.Error(t, err)
	assert.ErrorIs(t, err, locator.ErrProcessNotFound)
}

func TestWriteFieldsShowsErrors(t *testing.T) {
	g := fakegame.ForVersion(layout.V1)
	g.BreakChain(g.Layout.CurrentBikMovie)
	useFakeGame(t, g)

	binding, err := openBinding("", 0)
	require.NoError(t, err)
	binding.Data.Update(binding.Process)

	var buf bytes.Buffer
	require.NoError(t, writeFields(&buf, binding.Data.Fields(), true))
	assert.Contains(t, buf.String(), "error: ")
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestWriteTracesShowsBrokenLink(t *testing.T) {
	g := fakegame.ForVersion(layout.V1)
	g.BreakChain(g.Layout.PlayerPosX)
	useFakeGame(t, g)

	binding, err := openBinding("", 0)
	require.NoError(t, err)
	binding.Data.Update(binding.Process)

	var buf bytes.Buffer
	require.NoError(t, writeTraces(&buf, binding.Process, binding.Data, true))
	out := buf.String()

	hops := len(g.Layout.PlayerPosX.Offsets) - 1
	assert.Contains(t, out, "PlayerPosX "+g.Layout.PlayerPosX.String())
	assert.Contains(t, out, "STEP  READ AT")
	assert.Contains(t, out, fmt.Sprintf("error: step %d: ", hops-1))
	assert.Contains(t, out, process.ErrInvalidPointer.Error())
	assert.True(t, strings.HasSuffix(strings.TrimSpace(strings.Split(out, "error: ")[0]), "0x0"),
		"the last pointer read is the null one")
	assert.NotContains(t, out, "CurrentBikMovie")
}

func TestWriteTracesQuietWhenHealthy(t *testing.T) {
	useFakeGame(t, fakegame.ForVersion(layout.V2))

	binding, err := openBinding("", 0)
	require.NoError(t, err)
	binding.Data.Update(binding.Process)

	var buf bytes.Buffer
	require.NoError(t, writeTraces(&buf, binding.Process, binding.Data, true))
	assert.Empty(t, buf.String())
}

func TestDumpThenProbeFrom(t *testing.T) {
	for _, v := range []layout.GameVersion{layout.V1, layout.V2, layout.V3Distribution} {
		t.Run(v.String(), func(t *testing.T) {
			g := fakegame.ForVersion(v)
			g.SetMovie("Dishonored")
			g.SetLevel(8, "L_Streets1_P")
			g.SetLoading(true)
			g.SetMissionFlags(0x11)
			useFakeGame(t, g)

			dir := t.TempDir()
			dumpOutput, dumpImages = dir, false
			t.Cleanup(func() { dumpOutput = "" })

			var saved bytes.Buffer
			cmd := &cobra.Command{}
			cmd.SetOut(&saved)
			require.NoError(t, runDump(cmd, nil))
			assert.Contains(t, saved.String(), "saved Dishonored.exe "+v.String())

			binding, err := openBinding(dir, 0)
			require.NoError(t, err)
			defer binding.Close()
			assert.Equal(t, v, binding.Layout.Version)

			binding.Data.Update(binding.Process)
			f := binding.Data.Frame()
			assert.Equal(t, "Dishonored", f.CurrentBikMovie.Current)
			assert.Equal(t, int32(8), f.CurrentLevel.Current)
			assert.Equal(t, "L_Streets1_P", f.LevelName.Current)
			assert.True(t, f.IsLoading.Current)
			assert.Equal(t, int32(0x11), f.MissionStatsScreenFlags.Current)
			assert.True(t, f.MissionStatsScreenActive.Current)

			var hex bytes.Buffer
			require.NoError(t, writeMovieHex(&hex, binding.Process, binding.Layout, true))
			assert.Contains(t, hex.String(), "CurrentBikMovie at 0x")
			assert.Contains(t, hex.String(), "|Dishonor")
		})
	}
}

func TestProbeFromMissingDirectory(t *testing.T) {
	_, err := openBinding(t.TempDir()+"/missing", 0)
	require.Error(t, err)
}

func TestLoadConfigFlagsOverrideEnv(t *testing.T) {
	t.Setenv("DISHONORED_PROCESS_NAME", "from_env")
	t.Setenv("DISHONORED_FORMAT", "jsonl")
	prev := cfg
	t.Cleanup(func() { cfg = prev })

	cmd := &cobra.Command{}
	cmd.Flags().StringVar(&processName, "process", "", "")
	cmd.Flags().StringVarP(&format, "format", "f", "pretty", "")
	require.NoError(t, cmd.Flags().Parse([]string{"--format", "pretty"}))

	require.NoError(t, loadConfig(cmd, nil))
	assert.Equal(t, "from_env", cfg.ProcessName)
	assert.Equal(t, config.FormatPretty, cfg.Format)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	prev := cfg
	t.Cleanup(func() { cfg = prev })

	cmd := &cobra.Command{}
	cmd.Flags().IntVar(&segments, "segments", 0, "")
	require.NoError(t, cmd.Flags().Parse([]string{"--segments", "-1"}))

	assert.Error(t, loadConfig(cmd, nil))
}

func TestWriteIgnored(t *testing.T) {
	var buf bytes.Buffer
	writeIgnored(&buf, nil)
	assert.Empty(t, buf.String())

	h := fakegame.NewHelper()
	for _, pid := range []process.ProcessID{31, 9} {
		g := fakegame.ForVersion(layout.V1)
		g.SetModuleSize("Dishonored.exe", 1234)
		h.Add(pid, "Dishonored.exe", g)
	}
	loc := locator.New(h, "dishonored", nil)
	for i := 0; i < 3; i++ {
		loc.Locate()
	}

	writeIgnored(&buf, loc.IgnoredPIDs())
	assert.Equal(t, "ignored unsupported processes: 9, 31\n", buf.String())
}
