package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/saeedalam/dramarec/internal/storage"
	"github.com/saeedalam/dramarec/internal/worker"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the catalog snapshot",
	Long: `Load the dataset, fit the TF-IDF model and save everything to the index
directory (default .dramarec/). Later commands can pass --index to skip
fitting.

Run this:
- After editing the dataset
- Before serving a large catalog

Example:
  dramarec index --dataset dramas.csv`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func runIndex(cmd *cobra.Command, args []string) error {
	if cfg.Dataset == "" {
		return errNoDataset
	}

	start := time.Now()
	engine, report, err := worker.BuildEngine(cfg.Dataset, engineOptions())
	if err != nil {
		return err
	}

	idx, err := storage.NewSQLiteIndex(cfg.IndexDir)
	if err != nil {
		return fmt.Errorf("opening index: %w", err)
	}
	defer idx.Close()

	info, err := worker.SaveSnapshot(engine, cfg.Dataset, idx, storage.NewJSONStore(cfg.IndexDir))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, map[string]interface{}{
			"build":  info,
			"report": report,
		})
	}

	fmt.Fprintf(out, "Indexed %d dramas from %s\n", info.ItemCount, cfg.Dataset)
	if len(report.Rejected) > 0 {
		fmt.Fprintf(out, "  Skipped rows:  %d\n", len(report.Rejected))
		for _, row := range report.Rejected {
			fmt.Fprintf(out, "    line %d: %s\n", row.Line, row.Reason)
		}
	}
	fmt.Fprintf(out, "  Vocabulary:    %d terms\n", info.VocabSize)
	fmt.Fprintf(out, "  Build:         %s\n", info.ID)
	fmt.Fprintf(out, "  Saved to:      %s\n", cfg.IndexDir)
	fmt.Fprintf(out, "  Took:          %s\n", time.Since(start).Round(time.Millisecond))
	return nil
}
