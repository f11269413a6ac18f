package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rythin-sr/LiveSplit.Dishonored/layout"
	"github.com/rythin-sr/LiveSplit.Dishonored/table"
)

var layoutsCmd = &cobra.Command{
	Use:   "layouts",
	Short: "Print the supported builds and their pointer paths",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeLayouts(cmd.OutOrStdout(), layout.Table)
	},
}

func init() {
	rootCmd.AddCommand(layoutsCmd)
}

func writeLayouts(out io.Writer, rows []layout.Layout) error {
	for i, l := range rows {
		if i > 0 {
			fmt.Fprintln(out)
		}

		sizes := make([]string, len(l.ExeSizes))
		for j, s := range l.ExeSizes {
			sizes[j] = fmt.Sprintf("%d", uint64(s))
		}
		fmt.Fprintf(out, "%s (executable size %s, %s)\n", l.Version, strings.Join(sizes, " or "), l.IsLoading.Module)

		t := table.New(table.ColumnSpec{Header: "FIELD"}, table.ColumnSpec{Header: "PATH"}).Indent("  ")
		t.AddRow("PlayerPosX", l.PlayerPosX.String())
		t.AddRow("IsLoading", l.IsLoading.String())
		t.AddRow("CurrentLevel", l.CurrentLevel.String())
		t.AddRow("CurrentBikMovie", l.CurrentBikMovie.String())
		t.AddRow("CutsceneActive", l.CutsceneActive.String())
		t.AddRow("MissionStatsScreenFlags", l.MissionStatsScreenFlags.String())
		t.AddRow("StringTableBase", fmt.Sprintf("main+0x%X", uint64(l.StringTableBase)))
		if err := t.Render(out); err != nil {
			return err
		}
	}
	return nil
}
