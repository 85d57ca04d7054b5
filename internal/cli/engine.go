package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saeedalam/dramarec/internal/recommend"
	"github.com/saeedalam/dramarec/internal/search"
	"github.com/saeedalam/dramarec/internal/storage"
	"github.com/saeedalam/dramarec/internal/worker"
)

var errNoDataset = errors.New("no dataset configured: pass --dataset, set dataset in dramarec.yaml, or use --index")

func engineOptions() recommend.Options {
	return recommend.Options{
		Vectorizer: search.Options{
			Stem:          cfg.Vectorizer.Stem,
			MinDocFreq:    cfg.Vectorizer.MinDocFreq,
			MaxVocabulary: cfg.Vectorizer.MaxVocabulary,
		},
		MinMatchScore: cfg.Resolver.MinScore,
	}
}

// loadEngine builds the engine from the dataset, or from the saved snapshot
// when --index is set.
func loadEngine() (*recommend.Engine, error) {
	if useIndex {
		idx, err := storage.NewSQLiteIndex(cfg.IndexDir)
		if err != nil {
			return nil, fmt.Errorf("opening index: %w", err)
		}
		defer idx.Close()

		engine, err := worker.LoadSnapshot(idx, engineOptions())
		if errors.Is(err, storage.ErrNoSnapshot) {
			return nil, fmt.Errorf("%w in %s: run 'dramarec index' first", err, cfg.IndexDir)
		}
		return engine, err
	}

	if cfg.Dataset == "" {
		return nil, errNoDataset
	}
	engine, _, err := worker.BuildEngine(cfg.Dataset, engineOptions())
	return engine, err
}

// resolveCount applies the configured default and bounds to a -n flag.
func resolveCount(cmd *cobra.Command, n int) (int, error) {
	if !cmd.Flags().Changed("count") {
		return cfg.Recommend.DefaultCount, nil
	}
	if n <= 0 {
		return 0, &recommend.InvalidCountError{Count: n}
	}
	if n > cfg.Recommend.MaxCount {
		return 0, fmt.Errorf("count %d exceeds maximum %d", n, cfg.Recommend.MaxCount)
	}
	return n, nil
}
