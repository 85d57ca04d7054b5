package worker

import (
	"fmt"

	"github.com/saeedalam/dramarec/internal/logging"
	"github.com/saeedalam/dramarec/internal/recommend"
	"github.com/saeedalam/dramarec/internal/storage"
	"github.com/saeedalam/dramarec/pkg/types"
)

// BuildEngine loads the dataset at path and builds an engine over it.
// Rejected rows are logged and reported, they never abort the build.
func BuildEngine(path string, opts recommend.Options) (*recommend.Engine, *types.LoadReport, error) {
	items, report, err := storage.LoadDataset(path)
	if err != nil {
		return nil, nil, fmt.Errorf("loading dataset: %w", err)
	}

	for _, row := range report.Rejected {
		logging.Warn().
			Str("dataset", path).
			Int("line", row.Line).
			Str("reason", row.Reason).
			Msg("Skipped dataset row")
	}

	engine, err := recommend.New(items, opts)
	if err != nil {
		return nil, report, err
	}

	logging.Debug().
		Str("dataset", path).
		Int("items", report.Accepted).
		Int("rejected", len(report.Rejected)).
		Msg("Engine built")

	return engine, report, nil
}

// SaveSnapshot persists engine to the SQLite index and records the build in
// the JSON store.
func SaveSnapshot(engine *recommend.Engine, datasetPath string, idx *storage.SQLiteIndex, store *storage.JSONStore) (*types.BuildInfo, error) {
	items := engine.Items()

	info, err := idx.SaveSnapshot(items, engine.Space(), datasetPath)
	if err != nil {
		return nil, fmt.Errorf("saving snapshot: %w", err)
	}

	if store != nil {
		if err := store.SaveItems(items); err != nil {
			return nil, fmt.Errorf("saving items: %w", err)
		}
		if err := store.SaveBuildInfo(info); err != nil {
			return nil, fmt.Errorf("saving build info: %w", err)
		}
	}

	return info, nil
}

// LoadSnapshot builds an engine from a previously saved index without
// re-fitting the vector space.
func LoadSnapshot(idx *storage.SQLiteIndex, opts recommend.Options) (*recommend.Engine, error) {
	items, err := idx.LoadItems()
	if err != nil {
		return nil, err
	}
	space, err := idx.LoadSpace()
	if err != nil {
		return nil, err
	}
	return recommend.NewFromSnapshot(items, space, opts)
}
