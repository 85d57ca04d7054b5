package types

import "time"

// =============================================================================
// CATALOG TYPES
// =============================================================================

// Item is a single drama in the catalog. Items are created once at load time
// and never mutated afterwards.
type Item struct {
	ID        int      `json:"id"`
	Title     string   `json:"title" validate:"required"`
	Genres    []string `json:"genres,omitempty"`
	MoodTags  []string `json:"mood_tags,omitempty"`
	Summary   string   `json:"summary,omitempty"`
	MainLeads []string `json:"main_leads,omitempty"`
	Year      int      `json:"year,omitempty" validate:"gte=0"`
	Rating    float64  `json:"rating" validate:"gte=0,lte=10"` // personal rating out of 10
}

// ScoredItem pairs an item with its similarity to the recommendation subject.
type ScoredItem struct {
	Item  Item    `json:"item"`
	Score float64 `json:"score"`
}

// MatchMethod records which strategy resolved a query to an item.
type MatchMethod string

const (
	MatchExact     MatchMethod = "exact"
	MatchSubstring MatchMethod = "substring"
	MatchFuzzy     MatchMethod = "fuzzy"
	MatchID        MatchMethod = "id"
)

// RecommendationResult is the ranked answer to a recommend request.
type RecommendationResult struct {
	Query           string       `json:"query"`
	Subject         Item         `json:"subject"`
	Method          MatchMethod  `json:"method"`
	MatchScore      int          `json:"match_score"` // 0-100
	Recommendations []ScoredItem `json:"recommendations"`
}

// SearchResult holds items matched by a plain keyword search.
type SearchResult struct {
	Keyword string `json:"keyword"`
	Items   []Item `json:"items"`
}

// =============================================================================
// INDEX / SNAPSHOT TYPES
// =============================================================================

// EngineStats summarizes a built engine.
type EngineStats struct {
	Items          int     `json:"items"`
	VocabularySize int     `json:"vocabulary_size"`
	EmptyProfiles  int     `json:"empty_profiles"`
	MeanSimilarity float64 `json:"mean_similarity"` // over off-diagonal pairs
}

// BuildInfo describes a persisted index snapshot.
type BuildInfo struct {
	ID          string    `json:"id"`
	DatasetPath string    `json:"dataset_path"`
	ItemCount   int       `json:"item_count"`
	VocabSize   int       `json:"vocab_size"`
	CreatedAt   time.Time `json:"created_at"`
}

// LoadReport summarizes a dataset load.
type LoadReport struct {
	Path     string        `json:"path"`
	Accepted int           `json:"accepted"`
	Rejected []RejectedRow `json:"rejected,omitempty"`
}

// RejectedRow is a dataset row the loader refused.
type RejectedRow struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}
