package worker

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/saeedalam/dramarec/internal/logging"
	"github.com/saeedalam/dramarec/internal/recommend"
	"github.com/saeedalam/dramarec/internal/storage"
)

// DefaultInterval is how often the dataset is polled when none is configured.
const DefaultInterval = 5 * time.Second

// Manager watches the dataset file and rebuilds the live engine when it
// changes. A failed rebuild leaves the current engine in place.
type Manager struct {
	datasetPath string
	live        *recommend.Live
	opts        recommend.Options
	interval    time.Duration

	// optional snapshot persistence
	index *storage.SQLiteIndex
	store *storage.JSONStore

	stopChan  chan struct{}
	wg        sync.WaitGroup
	mu        sync.RWMutex
	running   bool
	lastState fileState
	rebuildMu sync.Mutex

	stats WorkerStats
	log   zerolog.Logger
}

// WorkerStats tracks watcher activity
type WorkerStats struct {
	Checks          int       `json:"checks"`
	Rebuilds        int       `json:"rebuilds"`
	ChangesDetected int       `json:"changes_detected"`
	LastCheck       time.Time `json:"last_check"`
	LastRebuild     time.Time `json:"last_rebuild"`
	ErrorCount      int       `json:"error_count"`
	LastError       string    `json:"last_error,omitempty"`
}

type fileState struct {
	modTime time.Time
	size    int64
}

// NewManager creates a watcher for datasetPath feeding live.
func NewManager(datasetPath string, live *recommend.Live, opts recommend.Options, interval time.Duration) *Manager {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Manager{
		datasetPath: datasetPath,
		live:        live,
		opts:        opts,
		interval:    interval,
		stopChan:    make(chan struct{}),
		log:         logging.With().Str("component", "watcher").Str("dataset", datasetPath).Logger(),
	}
}

// SetSnapshot makes every successful rebuild also refresh the on-disk index.
func (m *Manager) SetSnapshot(idx *storage.SQLiteIndex, store *storage.JSONStore) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.index = idx
	m.store = store
}

// Start begins polling
func (m *Manager) Start() error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	m.running = true
	m.stopChan = make(chan struct{})
	m.mu.Unlock()

	// The engine in live is assumed to reflect the file as it is now.
	if state, err := statFile(m.datasetPath); err == nil {
		m.mu.Lock()
		m.lastState = state
		m.mu.Unlock()
	}

	m.wg.Add(1)
	go m.watch()

	m.log.Info().Dur("interval", m.interval).Msg("Watcher started")
	return nil
}

// Stop halts polling and waits for an in-flight rebuild to finish.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	close(m.stopChan)
	m.mu.Unlock()

	m.wg.Wait()
	m.log.Info().Msg("Watcher stopped")
}

// IsRunning returns whether the watcher is active
func (m *Manager) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

// GetStats returns watcher statistics
func (m *Manager) GetStats() WorkerStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats
}

func (m *Manager) watch() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopChan:
			return
		case <-ticker.C:
			m.CheckNow()
		}
	}
}

// CheckNow compares the dataset against the last seen state and rebuilds if
// it changed. It reports whether a new engine was swapped in.
func (m *Manager) CheckNow() bool {
	m.mu.Lock()
	m.stats.Checks++
	m.stats.LastCheck = time.Now()
	last := m.lastState
	m.mu.Unlock()

	state, err := statFile(m.datasetPath)
	if err != nil {
		m.recordError("stat dataset", err)
		return false
	}
	if state.same(last) {
		return false
	}

	m.mu.Lock()
	m.stats.ChangesDetected++
	m.lastState = state
	m.mu.Unlock()

	m.log.Debug().Time("mod_time", state.modTime).Int64("size", state.size).Msg("Dataset changed")

	return m.Rebuild() == nil
}

// Rebuild loads the dataset, builds a fresh engine and swaps it in.
func (m *Manager) Rebuild() error {
	m.rebuildMu.Lock()
	defer m.rebuildMu.Unlock()

	start := time.Now()
	engine, report, err := BuildEngine(m.datasetPath, m.opts)
	if err != nil {
		m.recordError("rebuild", err)
		m.log.Error().Err(err).Msg("Rebuild failed, keeping current engine")
		return err
	}

	m.mu.RLock()
	idx, store := m.index, m.store
	m.mu.RUnlock()
	if idx != nil {
		if info, err := SaveSnapshot(engine, m.datasetPath, idx, store); err != nil {
			m.recordError("snapshot", err)
			m.log.Warn().Err(err).Msg("Snapshot not saved")
		} else {
			m.log.Debug().Str("build", info.ID).Msg("Snapshot saved")
		}
	}

	m.live.Swap(engine)

	m.mu.Lock()
	m.stats.Rebuilds++
	m.stats.LastRebuild = time.Now()
	m.mu.Unlock()

	m.log.Info().
		Int("items", report.Accepted).
		Int("rejected", len(report.Rejected)).
		Int64("version", m.live.Version()).
		Dur("took", time.Since(start)).
		Msg("Engine rebuilt")

	return nil
}

func (s fileState) same(o fileState) bool {
	return s.size == o.size && s.modTime.Equal(o.modTime)
}

func statFile(path string) (fileState, error) {
	info, err := os.Stat(path)
	if err != nil {
		return fileState{}, err
	}
	return fileState{modTime: info.ModTime(), size: info.Size()}, nil
}

// recordError records an error in stats
func (m *Manager) recordError(context string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.ErrorCount++
	m.stats.LastError = fmt.Sprintf("%s: %v", context, err)
}
