package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/saeedalam/dramarec/internal/storage"
	"github.com/saeedalam/dramarec/pkg/types"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show catalog and index statistics",
	Long: `Show statistics about the loaded catalog: item count, vocabulary size,
items with an empty profile and the mean pairwise similarity. When a snapshot
exists its latest build (from build.json, or the index when that file is
missing) is shown too.`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	engine, err := loadEngine()
	if err != nil {
		return err
	}
	stats := engine.Stats()

	build, err := latestBuild()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, map[string]interface{}{
			"engine":       stats,
			"latest_build": build,
		})
	}

	fmt.Fprintln(out, "┌─────────────────────────────────────────────┐")
	fmt.Fprintln(out, "│             dramarec Statistics             │")
	fmt.Fprintln(out, "├─────────────────────────────────────────────┤")
	fmt.Fprintln(out, "│ Catalog                                     │")
	fmt.Fprintf(out, "│   Dramas:            %-22d │\n", stats.Items)
	fmt.Fprintf(out, "│   Empty profiles:    %-22d │\n", stats.EmptyProfiles)
	fmt.Fprintln(out, "│                                             │")
	fmt.Fprintln(out, "│ Model                                       │")
	fmt.Fprintf(out, "│   Vocabulary:        %-22d │\n", stats.VocabularySize)
	fmt.Fprintf(out, "│   Mean similarity:   %-22.4f │\n", stats.MeanSimilarity)
	fmt.Fprintln(out, "│                                             │")
	fmt.Fprintln(out, "│ Snapshot                                    │")
	if build == nil {
		fmt.Fprintf(out, "│   %-41s │\n", "none (run 'dramarec index')")
	} else {
		fmt.Fprintf(out, "│   Build:             %-22.22s │\n", build.ID)
		fmt.Fprintf(out, "│   Items:             %-22d │\n", build.ItemCount)
		fmt.Fprintf(out, "│   Created:           %-22s │\n", build.CreatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Fprintln(out, "└─────────────────────────────────────────────┘")
	return nil
}

// latestBuild reads build.json from the index directory, falling back to the
// builds table when only index.db is present. It never creates either file.
func latestBuild() (*types.BuildInfo, error) {
	build, err := storage.NewJSONStore(cfg.IndexDir).GetBuildInfo()
	if err == nil {
		return build, nil
	}
	if !errors.Is(err, storage.ErrNoSnapshot) {
		return nil, fmt.Errorf("reading build.json: %w", err)
	}

	if _, err := os.Stat(filepath.Join(cfg.IndexDir, "index.db")); err != nil {
		return nil, nil
	}
	idx, err := storage.NewSQLiteIndex(cfg.IndexDir)
	if err != nil {
		return nil, fmt.Errorf("opening index: %w", err)
	}
	defer idx.Close()

	build, err = idx.LatestBuild()
	if errors.Is(err, storage.ErrNoSnapshot) {
		return nil, nil
	}
	return build, err
}
