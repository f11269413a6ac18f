package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rythin-sr/LiveSplit.Dishonored/autosplit"
	"github.com/rythin-sr/LiveSplit.Dishonored/coloransi"
	"github.com/rythin-sr/LiveSplit.Dishonored/locator"
	"github.com/rythin-sr/LiveSplit.Dishonored/process"
	"github.com/rythin-sr/LiveSplit.Dishonored/splits"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Watch the game and emit timer events",
	Long: `Waits for the game to start, then polls its memory and prints every
detected event. The built in stopwatch is driven by the events according to
the split settings, which are reloaded when the file changes.

Examples:
  # Pretty output with default settings
  dishonored_autosplit run

  # JSON Lines, splits from a settings file, run ends after 10 splits
  dishonored_autosplit run --format jsonl --settings splits.yaml --segments 10

  # Proton or Wine
  dishonored_autosplit run --process Dishonored.exe`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&format, "format", "f", "pretty", "output format: jsonl, pretty")
	runCmd.Flags().IntVar(&segments, "segments", 0, "number of splits that end the run, 0 never ends it")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := splits.OpenSettingsStore(cfg.SettingsPath)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	go func() {
		if err := store.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
	}()

	stopwatch := splits.NewStopwatch(cfg.Segments)
	dispatcher := splits.NewDispatcher(stopwatch, store)

	loc := locator.New(newHelper(), cfg.ProcessName, locator.AdvisorFunc(func(err error) {
		fmt.Fprintln(os.Stderr, coloransi.Foreground(coloransi.Red, err.Error()))
	}))
	game := autosplit.NewGameMemory(loc)
	defer game.Close()

	out := cmd.OutOrStdout()
	err = game.Run(ctx, cfg.PollInterval, func(e autosplit.Event) {
		dispatcher.Handle(e)
		if err := OutputEvent(cfg.Format, NewEventRecord(time.Now(), e, stopwatch), out); err != nil {
			fmt.Fprintf(os.Stderr, "output error: %v\n", err)
		}
	})
	writeIgnored(os.Stderr, loc.IgnoredPIDs())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// writeIgnored names the processes that were skipped for running an unsupported build.
func writeIgnored(out io.Writer, pids []process.ProcessID) {
	if len(pids) == 0 {
		return
	}
	ids := make([]string, len(pids))
	for i, pid := range pids {
		ids[i] = fmt.Sprint(pid)
	}
	fmt.Fprintf(out, "ignored unsupported processes: %s\n", strings.Join(ids, ", "))
}
