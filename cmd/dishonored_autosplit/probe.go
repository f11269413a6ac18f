package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rythin-sr/LiveSplit.Dishonored/coloransi"
	"github.com/rythin-sr/LiveSplit.Dishonored/hexdump"
	"github.com/rythin-sr/LiveSplit.Dishonored/layout"
	"github.com/rythin-sr/LiveSplit.Dishonored/locator"
	"github.com/rythin-sr/LiveSplit.Dishonored/process"
	"github.com/rythin-sr/LiveSplit.Dishonored/process_blob"
	"github.com/rythin-sr/LiveSplit.Dishonored/table"
	"github.com/rythin-sr/LiveSplit.Dishonored/watcher"
)

var (
	probeFrom  string
	probeHex   bool
	probePlain bool
	attachPID  uint32
)

const errorPrefix = "error: "

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Read every watched value once and print it",
	Long: `Attaches to the running game, or loads a dump directory, reads all
watched values once and prints them with their pointer paths.

Examples:
  # Live process
  dishonored_autosplit probe

  # One of several running copies
  dishonored_autosplit probe --pid 4242

  # A dump written by the dump command, with the cinematic name bytes
  dishonored_autosplit probe --from ./dump --hex`,
	RunE: runProbe,
}

func init() {
	probeCmd.Flags().StringVar(&probeFrom, "from", "", "dump directory to read instead of the live process")
	probeCmd.Flags().BoolVar(&probeHex, "hex", false, "hexdump the cinematic name bytes")
	probeCmd.Flags().BoolVar(&probePlain, "plain", false, "disable colors")
	probeCmd.Flags().Uint32Var(&attachPID, "pid", 0, "attach to this process id instead of searching by name")
	probeCmd.MarkFlagsMutuallyExclusive("from", "pid")
	rootCmd.AddCommand(probeCmd)
}

func runProbe(cmd *cobra.Command, args []string) error {
	binding, err := openBinding(probeFrom, process.ProcessID(attachPID))
	if err != nil {
		return err
	}
	defer binding.Close()

	binding.Data.Update(binding.Process)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "pid %d, version %s, pointer size %d\n\n",
		binding.Process.GetPID(), binding.Layout.Version, binding.Process.PointerSize())
	if err := writeFields(out, binding.Data.Fields(), probePlain); err != nil {
		return err
	}
	if err := writeTraces(out, binding.Process, binding.Data, probePlain); err != nil {
		return err
	}

	if probeHex {
		return writeMovieHex(out, binding.Process, binding.Layout, probePlain)
	}
	return nil
}

// openBinding binds the dump in dir when it is not empty, otherwise the live
// game with the given pid, or the first one found by name when pid is 0.
func openBinding(dir string, pid process.ProcessID) (*locator.Binding, error) {
	if dir == "" {
		loc := locator.New(newHelper(), cfg.ProcessName, nil)
		var binding *locator.Binding
		var err error
		if pid != 0 {
			binding, err = loc.LocatePID(pid)
		} else {
			binding, err = loc.Locate()
		}
		if err != nil {
			return nil, fmt.Errorf("no usable %q process: %w", cfg.ProcessName, err)
		}
		return binding, nil
	}

	dump := process_blob.NewProcessDump()
	if err := dump.Load(dir); err != nil {
		return nil, err
	}
	selected, err := locator.Fingerprint(dump)
	if err != nil {
		return nil, fmt.Errorf("dump %s: %w", dir, err)
	}
	return &locator.Binding{
		Process: dump,
		Layout:  selected,
		Data:    watcher.NewGameData(selected),
	}, nil
}

func writeFields(out io.Writer, fields []watcher.Field, plain bool) error {
	value := table.ColumnSpec{Header: "VALUE"}
	if !plain {
		value.Format = func(v string) string {
			if strings.HasPrefix(v, errorPrefix) {
				return coloransi.Foreground(coloransi.Red, v)
			}
			return v
		}
	}

	t := table.New(table.ColumnSpec{Header: "FIELD"}, value, table.ColumnSpec{Header: "PATH"})
	for _, f := range fields {
		v := f.Value()
		if err := f.Err(); err != nil {
			v = errorPrefix + err.Error()
		}
		t.AddRow(f.Name(), v, f.Path())
	}
	return t.Render(out)
}

// writeTraces walks the path of every field whose last read failed and lists
// the pointers read on the way, so the broken link is visible.
func writeTraces(out io.Writer, proc process.Process, data *watcher.GameData, plain bool) error {
	paint := func(s string) string {
		if plain {
			return s
		}
		return coloransi.Foreground(coloransi.Red, s)
	}

	for _, f := range data.Fields() {
		if f.Err() == nil {
			continue
		}
		dp, ok := data.Pointer(f.Name())
		if !ok {
			continue
		}

		fmt.Fprintf(out, "\n%s %s\n", f.Name(), dp)
		hops, addr, err := dp.Trace(proc)
		if len(hops) > 0 {
			t := table.New(
				table.ColumnSpec{Header: "STEP"},
				table.ColumnSpec{Header: "READ AT"},
				table.ColumnSpec{Header: "POINTER"},
			).Indent("  ")
			for i, hop := range hops {
				t.AddRow(fmt.Sprint(i), fmt.Sprintf("0x%x+0x%X", uint64(hop.From), uint64(hop.Offset)), fmt.Sprintf("0x%x", uint64(hop.To)))
			}
			if err := t.Render(out); err != nil {
				return err
			}
		}
		if err == nil {
			// every pointer resolved, the value itself did not read
			err = fmt.Errorf("value at 0x%x: %w", uint64(addr), f.Err())
		}
		fmt.Fprintln(out, "  "+paint(errorPrefix+err.Error()))
	}
	return nil
}

func writeMovieHex(out io.Writer, proc process.Process, l layout.Layout, plain bool) error {
	addr, err := l.CurrentBikMovie.Resolve(proc)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", l.CurrentBikMovie, err)
	}

	options := hexdump.DefaultOptions()
	options.Plain = plain
	dump, err := hexdump.Around(proc, addr, layout.MovieNameLength, 16, options)
	if err != nil {
		return fmt.Errorf("read %s: %w", l.CurrentBikMovie, err)
	}
	fmt.Fprintf(out, "\nCurrentBikMovie at 0x%x\n%s", uint64(addr), dump)
	return nil
}
