package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/saeedalam/dramarec/pkg/types"
)

// JSONStore keeps human-readable copies of the catalog and the last build
// next to the SQLite snapshot.
type JSONStore struct {
	basePath string
	mu       sync.RWMutex
}

// NewJSONStore creates a new JSON store
func NewJSONStore(basePath string) *JSONStore {
	return &JSONStore{
		basePath: basePath,
	}
}

// --- Items ---

func (s *JSONStore) ItemsPath() string {
	return filepath.Join(s.basePath, "items.json")
}

func (s *JSONStore) GetItems() ([]types.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items, err := readJSON[[]types.Item](s.ItemsPath())
	if err != nil {
		return nil, err
	}
	if items == nil {
		return []types.Item{}, nil
	}
	return *items, nil
}

func (s *JSONStore) SaveItems(items []types.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return writeJSON(s.ItemsPath(), items)
}

// --- Build ---

func (s *JSONStore) GetBuildInfo() (*types.BuildInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, err := readJSON[types.BuildInfo](filepath.Join(s.basePath, "build.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSnapshot
		}
		return nil, err
	}
	return info, nil
}

func (s *JSONStore) SaveBuildInfo(info *types.BuildInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return writeJSON(filepath.Join(s.basePath, "build.json"), info)
}

func readJSON[T any](path string) (*T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var result T
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

func writeJSON(path string, v any) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	// Write to a temp file then rename so readers never see a partial file.
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
