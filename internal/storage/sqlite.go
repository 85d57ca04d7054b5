package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/saeedalam/dramarec/internal/search"
	"github.com/saeedalam/dramarec/pkg/types"
)

// ErrNoSnapshot is returned when no index has been built yet.
var ErrNoSnapshot = errors.New("no index snapshot found")

// SQLiteIndex persists a built catalog (items, fitted vocabulary and item
// vectors) so later runs can skip fitting.
type SQLiteIndex struct {
	db       *sql.DB
	basePath string
}

// NewSQLiteIndex opens (or creates) index.db under basePath.
func NewSQLiteIndex(basePath string) (*SQLiteIndex, error) {
	dbPath := filepath.Join(basePath, "index.db")

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(10000)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// Keep it simple to avoid locks
	db.SetMaxOpenConns(1)

	idx := &SQLiteIndex{
		db:       db,
		basePath: basePath,
	}

	if err := idx.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	return idx, nil
}

func (idx *SQLiteIndex) createTables() error {
	schema := `
	-- Catalog, in engine order
	CREATE TABLE IF NOT EXISTS items (
		id INTEGER PRIMARY KEY,
		position INTEGER NOT NULL,
		title TEXT NOT NULL,
		genres TEXT,
		mood_tags TEXT,
		summary TEXT,
		main_leads TEXT,
		year INTEGER,
		rating REAL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_items_position ON items(position);

	-- Packed TF-IDF vector per item
	CREATE TABLE IF NOT EXISTS item_vectors (
		item_id INTEGER PRIMARY KEY,
		vector BLOB NOT NULL
	);

	-- Fitted vocabulary (single row)
	CREATE TABLE IF NOT EXISTS vocab (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		vocabulary TEXT,
		idf TEXT,
		doc_count INTEGER,
		stem INTEGER
	);

	-- Build history
	CREATE TABLE IF NOT EXISTS builds (
		id TEXT PRIMARY KEY,
		dataset_path TEXT,
		item_count INTEGER,
		vocab_size INTEGER,
		created_at INTEGER
	);
	`

	_, err := idx.db.Exec(schema)
	return err
}

// Close closes the database connection
func (idx *SQLiteIndex) Close() error {
	return idx.db.Close()
}

// WithTransaction runs a function within a SQLite transaction
func (idx *SQLiteIndex) WithTransaction(fn func(tx *sql.Tx) error) error {
	tx, err := idx.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// --- Snapshot ---

// SaveSnapshot replaces the stored catalog with items and their vectors from
// space, and records a new build.
func (idx *SQLiteIndex) SaveSnapshot(items []types.Item, space *search.VectorSpace, datasetPath string) (*types.BuildInfo, error) {
	if len(items) != len(space.Vectors) {
		return nil, fmt.Errorf("snapshot has %d items but %d vectors", len(items), len(space.Vectors))
	}

	vocabJSON, err := json.Marshal(space.Vocabulary)
	if err != nil {
		return nil, err
	}
	idfJSON, err := json.Marshal(space.IDF)
	if err != nil {
		return nil, err
	}

	info := &types.BuildInfo{
		ID:          uuid.New().String(),
		DatasetPath: datasetPath,
		ItemCount:   len(items),
		VocabSize:   space.Dim(),
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}

	err = idx.WithTransaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM items"); err != nil {
			return err
		}
		if _, err := tx.Exec("DELETE FROM item_vectors"); err != nil {
			return err
		}

		itemStmt, err := tx.Prepare(`
			INSERT INTO items (id, position, title, genres, mood_tags, summary, main_leads, year, rating)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer itemStmt.Close()

		vecStmt, err := tx.Prepare("INSERT INTO item_vectors (item_id, vector) VALUES (?, ?)")
		if err != nil {
			return err
		}
		defer vecStmt.Close()

		for pos, item := range items {
			genres, _ := json.Marshal(item.Genres)
			moods, _ := json.Marshal(item.MoodTags)
			leads, _ := json.Marshal(item.MainLeads)
			if _, err := itemStmt.Exec(item.ID, pos, item.Title, string(genres), string(moods),
				item.Summary, string(leads), item.Year, item.Rating); err != nil {
				return fmt.Errorf("storing item %d: %w", item.ID, err)
			}
			if _, err := vecStmt.Exec(item.ID, search.PackVector(space.Vectors[pos], space.Dim())); err != nil {
				return fmt.Errorf("storing vector %d: %w", item.ID, err)
			}
		}

		if _, err := tx.Exec(`
			INSERT OR REPLACE INTO vocab (id, vocabulary, idf, doc_count, stem)
			VALUES (1, ?, ?, ?, ?)
		`, string(vocabJSON), string(idfJSON), space.DocCount, space.Stem); err != nil {
			return fmt.Errorf("storing vocab: %w", err)
		}

		_, err = tx.Exec(`
			INSERT INTO builds (id, dataset_path, item_count, vocab_size, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, info.ID, info.DatasetPath, info.ItemCount, info.VocabSize, info.CreatedAt.Unix())
		return err
	})
	if err != nil {
		return nil, err
	}

	return info, nil
}

// LoadItems returns the stored catalog in engine order.
func (idx *SQLiteIndex) LoadItems() ([]types.Item, error) {
	rows, err := idx.db.Query(`
		SELECT id, title, genres, mood_tags, summary, main_leads, year, rating
		FROM items ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []types.Item
	for rows.Next() {
		var item types.Item
		var genres, moods, leads sql.NullString
		var summary sql.NullString
		if err := rows.Scan(&item.ID, &item.Title, &genres, &moods, &summary, &leads, &item.Year, &item.Rating); err != nil {
			return nil, err
		}
		item.Summary = summary.String
		item.Genres = decodeList(genres)
		item.MoodTags = decodeList(moods)
		item.MainLeads = decodeList(leads)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNoSnapshot
	}

	return items, nil
}

func decodeList(s sql.NullString) []string {
	if !s.Valid || s.String == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(s.String), &out); err != nil {
		return nil
	}
	return out
}

// LoadSpace rehydrates the fitted vector space with vectors in engine order.
func (idx *SQLiteIndex) LoadSpace() (*search.VectorSpace, error) {
	var vocabStr, idfStr string
	var docCount int
	var stem bool

	err := idx.db.QueryRow("SELECT vocabulary, idf, doc_count, stem FROM vocab WHERE id = 1").
		Scan(&vocabStr, &idfStr, &docCount, &stem)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoSnapshot
		}
		return nil, err
	}

	var vocabulary map[string]int
	if err := json.Unmarshal([]byte(vocabStr), &vocabulary); err != nil {
		return nil, fmt.Errorf("decoding vocabulary: %w", err)
	}
	var idf []float64
	if err := json.Unmarshal([]byte(idfStr), &idf); err != nil {
		return nil, fmt.Errorf("decoding idf: %w", err)
	}

	rows, err := idx.db.Query(`
		SELECT v.vector FROM items i
		JOIN item_vectors v ON v.item_id = i.id
		ORDER BY i.position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vectors []search.Vector
	for rows.Next() {
		var blob []byte
		if err := rows.Scan(&blob); err != nil {
			return nil, err
		}
		vec, dim, err := search.UnpackVector(blob)
		if err != nil {
			return nil, err
		}
		if dim != len(idf) {
			return nil, fmt.Errorf("vector dimension %d does not match vocabulary %d", dim, len(idf))
		}
		vectors = append(vectors, vec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return search.Restore(vocabulary, idf, docCount, stem, vectors)
}

// LatestBuild returns the most recent build.
func (idx *SQLiteIndex) LatestBuild() (*types.BuildInfo, error) {
	var info types.BuildInfo
	var createdAt int64
	err := idx.db.QueryRow(`
		SELECT id, dataset_path, item_count, vocab_size, created_at
		FROM builds ORDER BY created_at DESC, rowid DESC LIMIT 1
	`).Scan(&info.ID, &info.DatasetPath, &info.ItemCount, &info.VocabSize, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoSnapshot
		}
		return nil, err
	}
	info.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &info, nil
}

// GetStats returns row counts per table.
func (idx *SQLiteIndex) GetStats() (map[string]int, error) {
	stats := make(map[string]int)

	tables := []string{"items", "item_vectors", "builds"}
	for _, table := range tables {
		var count int
		if err := idx.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
			return nil, err
		}
		stats[table] = count
	}

	return stats, nil
}
