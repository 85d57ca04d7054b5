package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/saeedalam/dramarec/internal/logging"
	"github.com/saeedalam/dramarec/internal/mcp"
	"github.com/saeedalam/dramarec/internal/recommend"
	"github.com/saeedalam/dramarec/internal/storage"
	"github.com/saeedalam/dramarec/internal/worker"
)

var serveWatch bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start MCP server for IDE integration",
	Long: `Start the MCP (Model Context Protocol) server.

The server communicates via stdio using JSON-RPC and exposes the recommend,
resolve, top_rated, search, get_item, get_stats and reload tools.

With --watch (or server.watch in the config) the dataset is polled and the
engine is rebuilt whenever the file changes; each rebuild also refreshes the
snapshot in the index directory. Without it the reload tool rebuilds the
engine in memory only and leaves the index directory untouched.

Examples:
  dramarec serve --dataset dramas.csv
  dramarec serve --dataset dramas.csv --watch
  dramarec serve --index`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVarP(&serveWatch, "watch", "w", false, "Rebuild when the dataset changes")
}

func runServe(cmd *cobra.Command, args []string) error {
	engine, err := loadEngine()
	if err != nil {
		return err
	}
	live := recommend.NewLive(engine)

	server, err := mcp.NewServer(live, mcp.Options{
		Version:      buildVersion,
		DefaultCount: cfg.Recommend.DefaultCount,
		MaxCount:     cfg.Recommend.MaxCount,
		PageSize:     cfg.Browse.PageSize,
		CacheSize:    cfg.Server.CacheSize,
	})
	if err != nil {
		return err
	}

	watcher, stop, err := newDatasetWatcher(live, serveWatch || cfg.Server.Watch)
	if err != nil {
		return err
	}
	defer stop()
	if watcher != nil {
		server.SetWatcher(watcher)
	}

	logging.Info().
		Int("items", engine.Stats().Items).
		Bool("from_index", useIndex).
		Msg("MCP server ready")

	// Blocks until stdin closes
	return server.Run(os.Stdin, os.Stdout)
}

// newDatasetWatcher returns the watcher backing the reload tool, or nil when
// no dataset is configured. Only a watching server attaches the snapshot
// index, so a plain serve never writes to the index directory.
func newDatasetWatcher(live *recommend.Live, watching bool) (*worker.Manager, func(), error) {
	noop := func() {}
	if cfg.Dataset == "" {
		return nil, noop, nil
	}

	watcher := worker.NewManager(cfg.Dataset, live, engineOptions(), cfg.Server.WatchInterval)
	if !watching {
		return watcher, noop, nil
	}

	idx, err := storage.NewSQLiteIndex(cfg.IndexDir)
	if err != nil {
		logging.Warn().Err(err).Msg("Snapshot index unavailable, rebuilds will not be saved")
	} else {
		watcher.SetSnapshot(idx, storage.NewJSONStore(cfg.IndexDir))
	}

	if err := watcher.Start(); err != nil {
		if idx != nil {
			idx.Close()
		}
		return nil, noop, err
	}

	return watcher, func() {
		watcher.Stop()
		if idx != nil {
			idx.Close()
		}
	}, nil
}
