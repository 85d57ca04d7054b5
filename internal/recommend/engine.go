// Package recommend is the content-based recommendation engine.
//
// An Engine is built once from the full catalog: every item's text profile is
// fitted into a TF-IDF vector space and the pairwise cosine similarity matrix
// is computed up front. After construction an Engine is immutable, so all of
// its query methods may be called concurrently without locking. Use Live to
// replace an engine wholesale when the catalog changes.
//
// The engine never logs; errors are returned to the caller.
package recommend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/saeedalam/dramarec/internal/profile"
	"github.com/saeedalam/dramarec/internal/resolve"
	"github.com/saeedalam/dramarec/internal/search"
	"github.com/saeedalam/dramarec/pkg/types"
)

// Options configures engine construction.
type Options struct {
	Vectorizer search.Options
	// MinMatchScore is the fuzzy acceptance threshold (0-100); 0 uses the default.
	MinMatchScore int
	// Similarity replaces the default fuzzy title metric.
	Similarity resolve.StringSimilarity
}

// Engine holds the item table, vector space and similarity matrix.
type Engine struct {
	items    []types.Item
	index    map[int]int // item id → position
	space    *search.VectorSpace
	matrix   *search.SimilarityMatrix
	resolver *resolve.Resolver
	byRating []int    // positions, best rated first
	keywords []string // lowercased "title genres mood tags" per item
}

// New builds an engine over items. Items are copied; the caller's slice is
// not retained.
func New(items []types.Item, opts Options) (*Engine, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCorpus
	}

	space, err := search.Fit(profile.BuildAll(items), opts.Vectorizer)
	if err != nil {
		return nil, fmt.Errorf("fitting vector space: %w", err)
	}

	return newEngine(items, space, opts)
}

// NewFromSnapshot builds an engine from a previously fitted vector space,
// skipping the fit. space.Vectors must be in item order.
func NewFromSnapshot(items []types.Item, space *search.VectorSpace, opts Options) (*Engine, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCorpus
	}
	if space == nil || len(space.Vectors) != len(items) {
		return nil, fmt.Errorf("snapshot has vectors for a different catalog")
	}
	return newEngine(items, space, opts)
}

func newEngine(items []types.Item, space *search.VectorSpace, opts Options) (*Engine, error) {
	owned := make([]types.Item, len(items))
	copy(owned, items)

	index := make(map[int]int, len(owned))
	for pos, item := range owned {
		if _, dup := index[item.ID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateItem, item.ID)
		}
		index[item.ID] = pos
	}

	e := &Engine{
		items:  owned,
		index:  index,
		space:  space,
		matrix: search.NewSimilarityMatrix(space),
		resolver: resolve.New(owned, resolve.Options{
			MinScore:   opts.MinMatchScore,
			Similarity: opts.Similarity,
		}),
	}
	e.byRating = e.rankByRating()
	e.keywords = make([]string, len(owned))
	for pos, item := range owned {
		e.keywords[pos] = keywordText(item)
	}

	return e, nil
}

// Resolve maps a free-text query to an item.
func (e *Engine) Resolve(query string) (resolve.Resolution, error) {
	return e.resolver.Resolve(query)
}

// Recommend resolves query to an item and returns up to count items most
// similar to it, best first. Equal scores are ordered by item id.
func (e *Engine) Recommend(query string, count int) (*types.RecommendationResult, error) {
	if count <= 0 {
		return nil, &InvalidCountError{Count: count}
	}

	res, err := e.resolver.Resolve(query)
	if err != nil {
		return nil, err
	}

	return e.recommendFor(query, e.index[res.ItemID], res.Method, res.Score, count), nil
}

// RecommendByID returns up to count items most similar to the given item.
func (e *Engine) RecommendByID(id int, count int) (*types.RecommendationResult, error) {
	if count <= 0 {
		return nil, &InvalidCountError{Count: count}
	}
	pos, ok := e.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownItem, id)
	}
	return e.recommendFor(e.items[pos].Title, pos, types.MatchID, 100, count), nil
}

func (e *Engine) recommendFor(query string, pos int, method types.MatchMethod, matchScore int, count int) *types.RecommendationResult {
	row := e.matrix.Row(pos)
	sort.Slice(row, func(i, j int) bool {
		if row[i].Score != row[j].Score {
			return row[i].Score > row[j].Score
		}
		return e.items[row[i].Index].ID < e.items[row[j].Index].ID
	})
	if len(row) > count {
		row = row[:count]
	}

	recs := make([]types.ScoredItem, len(row))
	for i, n := range row {
		recs[i] = types.ScoredItem{Item: e.items[n.Index], Score: n.Score}
	}

	return &types.RecommendationResult{
		Query:           query,
		Subject:         e.items[pos],
		Method:          method,
		MatchScore:      matchScore,
		Recommendations: recs,
	}
}

// Search returns up to count items whose title, genres or mood tags contain
// keyword (case-insensitive), in catalog order.
func (e *Engine) Search(keyword string, count int) (*types.SearchResult, error) {
	if count <= 0 {
		return nil, &InvalidCountError{Count: count}
	}
	kw := strings.ToLower(strings.TrimSpace(keyword))
	if kw == "" {
		return nil, &NoMatchError{Query: keyword, Threshold: e.resolver.MinScore()}
	}

	result := &types.SearchResult{Keyword: keyword, Items: []types.Item{}}
	for pos, text := range e.keywords {
		if len(result.Items) >= count {
			break
		}
		if strings.Contains(text, kw) {
			result.Items = append(result.Items, e.items[pos])
		}
	}
	return result, nil
}

func keywordText(item types.Item) string {
	parts := []string{item.Title, strings.Join(item.Genres, ", "), strings.Join(item.MoodTags, ", ")}
	return strings.ToLower(strings.Join(parts, " "))
}

// Item returns the item with the given id.
func (e *Engine) Item(id int) (types.Item, bool) {
	pos, ok := e.index[id]
	if !ok {
		return types.Item{}, false
	}
	return e.items[pos], true
}

// Items returns a copy of the catalog in load order.
func (e *Engine) Items() []types.Item {
	out := make([]types.Item, len(e.items))
	copy(out, e.items)
	return out
}

// Space returns the fitted vector space. Callers must not modify it.
func (e *Engine) Space() *search.VectorSpace {
	return e.space
}

// Similarity returns the similarity between two items by id.
func (e *Engine) Similarity(a, b int) (float64, error) {
	pa, ok := e.index[a]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownItem, a)
	}
	pb, ok := e.index[b]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownItem, b)
	}
	return e.matrix.At(pa, pb), nil
}

// Stats summarizes the engine.
func (e *Engine) Stats() types.EngineStats {
	empty := 0
	for _, v := range e.space.Vectors {
		if len(v) == 0 {
			empty++
		}
	}
	return types.EngineStats{
		Items:          len(e.items),
		VocabularySize: e.space.Dim(),
		EmptyProfiles:  empty,
		MeanSimilarity: e.matrix.Mean(),
	}
}
