package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/rythin-sr/LiveSplit.Dishonored/config"
)

var (
	cfg config.Config

	processName  string
	pollInterval time.Duration
	settingsPath string
	format       string
	segments     int
)

// newHelper is swapped out by tests.
var newHelper = platformHelper

var rootCmd = &cobra.Command{
	Use:   "dishonored_autosplit",
	Short: "Auto splitter for Dishonored",
	Long: `Reads Dishonored game memory and turns state changes into timer events.

Supported builds: 1.2, 1.4 (Steam and Reloaded) and the Epic Games Store release.

Every flag can also be set through the environment:
  DISHONORED_PROCESS_NAME   game process name (default "dishonored")
  DISHONORED_POLL_INTERVAL  poll interval (default 15ms)
  DISHONORED_SETTINGS       split settings file
  DISHONORED_FORMAT         event output format, pretty or jsonl
  DISHONORED_SEGMENTS       number of splits in a full run`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&processName, "process", "", "game process name")
	flags.StringVar(&settingsPath, "settings", "", "split settings file (YAML)")
	flags.DurationVar(&pollInterval, "interval", 0, "poll interval")
}

// loadConfig reads the environment, then applies the flags that were set.
func loadConfig(cmd *cobra.Command, args []string) error {
	var loaded config.Config
	if err := config.ParseEnv(&loaded); err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("process") {
		loaded.ProcessName = processName
	}
	if flags.Changed("settings") {
		loaded.SettingsPath = settingsPath
	}
	if flags.Changed("interval") {
		loaded.PollInterval = pollInterval
	}
	if flags.Changed("format") {
		loaded.Format = format
	}
	if flags.Changed("segments") {
		loaded.Segments = segments
	}

	if err := loaded.Validate(); err != nil {
		return err
	}
	cfg = loaded
	return nil
}
