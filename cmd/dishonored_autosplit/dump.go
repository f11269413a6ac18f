package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rythin-sr/LiveSplit.Dishonored/process"
	"github.com/rythin-sr/LiveSplit.Dishonored/process/memory_map"
	"github.com/rythin-sr/LiveSplit.Dishonored/process_blob"
)

var (
	dumpOutput string
	dumpImages bool
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Save the memory behind every watched value",
	Long: `Attaches to the running game, reads every watched value once and saves
the memory those reads touched into a directory that probe --from can load.

Examples:
  dishonored_autosplit dump --output ./dump

  # Also copy the complete executable and movie library images
  dishonored_autosplit dump --output ./dump --images`,
	Args: cobra.NoArgs,
	RunE: runDump,
}

func init() {
	dumpCmd.Flags().StringVarP(&dumpOutput, "output", "o", "", "output directory for the dump")
	dumpCmd.Flags().BoolVar(&dumpImages, "images", false, "also save the executable and movie library images")
	dumpCmd.Flags().Uint32Var(&attachPID, "pid", 0, "attach to this process id instead of searching by name")
	dumpCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(dumpCmd)
}

func runDump(cmd *cobra.Command, args []string) error {
	binding, err := openBinding("", process.ProcessID(attachPID))
	if err != nil {
		return err
	}
	defer binding.Close()

	recorder := process_blob.NewRecorder(binding.Process)
	binding.Data.Update(recorder)

	exe, err := process.MainModule(recorder)
	if err != nil {
		return err
	}
	if dumpImages {
		captureImage(recorder, exe.Name)
		captureImage(recorder, binding.Layout.IsLoading.Module)
	}

	dump := recorder.Capture()
	dump.Name = exe.Name
	if err := dump.Save(dumpOutput); err != nil {
		return fmt.Errorf("failed to save dump: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "saved %s %s (pid %d, %d regions) to %s\n",
		exe.Name, binding.Layout.Version, dump.PID, len(dump.MemoryMap), dumpOutput)
	return nil
}

// captureImage reads a whole module through the recorder, an image that cannot
// be read in one piece is skipped with a warning.
func captureImage(recorder *process_blob.Recorder, name string) {
	module, err := process.Module(recorder, name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %s: %v\n", name, err)
		return
	}
	mm, err := recorder.GetMemoryMap()
	if err != nil || !memory_map.ContainsRange(uint64(module.Base), uint64(module.Size), mm) {
		fmt.Fprintf(os.Stderr, "warning: %s image is not fully readable, not saved\n", name)
		return
	}
	if _, err := recorder.ReadMemory(module.Base, module.Size); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %s image not saved: %v\n", name, err)
	}
}

