package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rythin-sr/LiveSplit.Dishonored/autosplit"
	"github.com/rythin-sr/LiveSplit.Dishonored/splits"
	"github.com/rythin-sr/LiveSplit.Dishonored/table"
)

var (
	settingsEnable       []string
	settingsDisable      []string
	settingsAutoStartEnd bool
)

// splitAreas are the completions with a split toggle, in story order.
var splitAreas = []autosplit.AreaCompletionType{
	autosplit.IntroEnd,
	autosplit.PrisonEscape,
	autosplit.OutsidersDream,
	autosplit.Weepers,
	autosplit.MissionEnd,
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the split settings",
	Long: `Prints the split settings, or changes them and writes them back to the
settings file. A running autosplitter picks up the change.

Examples:
  dishonored_autosplit settings --settings splits.yaml

  # Split on the prison escape and every mission end, not on the intro
  dishonored_autosplit settings --settings splits.yaml --enable PrisonEscape,MissionEnd --disable IntroEnd`,
	Args: cobra.NoArgs,
	RunE: runSettings,
}

func init() {
	settingsCmd.Flags().StringSliceVar(&settingsEnable, "enable", nil, "area completions to split on")
	settingsCmd.Flags().StringSliceVar(&settingsDisable, "disable", nil, "area completions not to split on")
	settingsCmd.Flags().BoolVar(&settingsAutoStartEnd, "auto-start-end", true, "start, reset and end the run automatically")
	rootCmd.AddCommand(settingsCmd)
}

func runSettings(cmd *cobra.Command, args []string) error {
	s, err := loadSettingsFile(cfg.SettingsPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	modified := len(settingsEnable) > 0 || len(settingsDisable) > 0 || flags.Changed("auto-start-end")
	if modified {
		if cfg.SettingsPath == "" {
			return errors.New("changing settings needs --settings or DISHONORED_SETTINGS")
		}
		if err := applySplitToggles(&s, settingsEnable, settingsDisable); err != nil {
			return err
		}
		if flags.Changed("auto-start-end") {
			s.AutoStartEnd = settingsAutoStartEnd
		}
		if err := s.Save(cfg.SettingsPath); err != nil {
			return err
		}
	}
	return writeSettings(cmd.OutOrStdout(), s)
}

// loadSettingsFile returns the defaults when path is empty or does not exist yet.
func loadSettingsFile(path string) (splits.Settings, error) {
	if path == "" {
		return splits.DefaultSettings(), nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return splits.DefaultSettings(), nil
	}
	return splits.LoadSettings(path)
}

// applySplitToggles enables then disables the named areas, a name in both lists ends up off.
func applySplitToggles(s *splits.Settings, enable, disable []string) error {
	for _, names := range []struct {
		list []string
		on   bool
	}{{enable, true}, {disable, false}} {
		for _, name := range names.list {
			area, err := autosplit.ParseAreaCompletionType(name)
			if err != nil {
				return err
			}
			if err := s.SetSplit(area, names.on); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeSettings(out io.Writer, s splits.Settings) error {
	onOff := func(on bool) string {
		if on {
			return "on"
		}
		return "off"
	}

	t := table.New(table.ColumnSpec{Header: "SETTING"}, table.ColumnSpec{Header: "VALUE"})
	t.AddRow("AutoStartEnd", onOff(s.AutoStartEnd))
	for _, area := range splitAreas {
		t.AddRow(fmt.Sprintf("Split on %s", area), onOff(s.SplitsOn(area)))
	}
	return t.Render(out)
}
