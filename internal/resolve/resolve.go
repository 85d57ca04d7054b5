// Package resolve maps free-text user input to a catalog title.
//
// Strategies are tried in order: exact case-insensitive title match,
// case-insensitive substring containment, then approximate matching with a
// 0-100 string similarity. Ties are always broken by the lexicographically
// first title and then the lowest id, so resolution is reproducible.
package resolve

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/saeedalam/dramarec/pkg/types"
)

// DefaultMinScore is the lowest fuzzy score accepted as a match.
const DefaultMinScore = 60

// StringSimilarity scores how alike two strings are on a 0-100 scale.
type StringSimilarity interface {
	Score(a, b string) int
}

// SimilarityFunc adapts a plain function to StringSimilarity.
type SimilarityFunc func(a, b string) int

// Score calls f(a, b).
func (f SimilarityFunc) Score(a, b string) int {
	return f(a, b)
}

// LevenshteinRatio scores strings as 100 × (1 − distance / longer length),
// case-insensitively and by runes.
type LevenshteinRatio struct{}

// Score implements StringSimilarity.
func (LevenshteinRatio) Score(a, b string) int {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if a == b {
		return 100
	}
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 100
	}
	dist := fuzzy.LevenshteinDistance(a, b)
	return int(math.Round(100 * (1 - float64(dist)/float64(longest))))
}

// NoMatchError is returned when no title is close enough to the query.
type NoMatchError struct {
	Query     string
	BestTitle string
	BestScore int
	Threshold int
}

func (e *NoMatchError) Error() string {
	if strings.TrimSpace(e.Query) == "" {
		return "no match: empty query"
	}
	if e.BestTitle == "" {
		return fmt.Sprintf("no match for %q", e.Query)
	}
	return fmt.Sprintf("no match for %q (closest %q scored %d, need %d)",
		e.Query, e.BestTitle, e.BestScore, e.Threshold)
}

// Resolution is the outcome of a successful Resolve.
type Resolution struct {
	ItemID int               `json:"item_id"`
	Title  string            `json:"title"`
	Method types.MatchMethod `json:"method"`
	Score  int               `json:"score"`
}

// Options configures a Resolver.
type Options struct {
	// MinScore is the fuzzy acceptance threshold; 0 means DefaultMinScore.
	MinScore int
	// Similarity replaces the default LevenshteinRatio metric.
	Similarity StringSimilarity
}

type entry struct {
	id    int
	title string
	lower string
}

// Resolver resolves queries against a fixed title set. It is safe for
// concurrent use.
type Resolver struct {
	entries    []entry // sorted by title, then id
	minScore   int
	similarity StringSimilarity
}

// New creates a resolver over the given items.
func New(items []types.Item, opts Options) *Resolver {
	if opts.MinScore <= 0 {
		opts.MinScore = DefaultMinScore
	}
	if opts.Similarity == nil {
		opts.Similarity = LevenshteinRatio{}
	}

	entries := make([]entry, len(items))
	for i, item := range items {
		entries[i] = entry{
			id:    item.ID,
			title: item.Title,
			lower: strings.ToLower(strings.TrimSpace(item.Title)),
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entryLess(entries[i], entries[j])
	})

	return &Resolver{
		entries:    entries,
		minScore:   opts.MinScore,
		similarity: opts.Similarity,
	}
}

func entryLess(a, b entry) bool {
	if a.title != b.title {
		return a.title < b.title
	}
	return a.id < b.id
}

// MinScore returns the fuzzy acceptance threshold.
func (r *Resolver) MinScore() int {
	return r.minScore
}

// Resolve maps a query to a single item.
func (r *Resolver) Resolve(query string) (Resolution, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return Resolution{}, &NoMatchError{Query: query, Threshold: r.minScore}
	}

	// Exact
	for _, e := range r.entries {
		if e.lower == q {
			return Resolution{ItemID: e.id, Title: e.title, Method: types.MatchExact, Score: 100}, nil
		}
	}

	// Substring
	var contained []entry
	for _, e := range r.entries {
		if strings.Contains(e.lower, q) {
			contained = append(contained, e)
		}
	}
	if len(contained) == 1 {
		e := contained[0]
		return Resolution{ItemID: e.id, Title: e.title, Method: types.MatchSubstring, Score: r.similarity.Score(q, e.lower)}, nil
	}
	if len(contained) > 1 {
		best, score := r.best(q, contained)
		return Resolution{ItemID: best.id, Title: best.title, Method: types.MatchSubstring, Score: score}, nil
	}

	// Fuzzy
	if len(r.entries) == 0 {
		return Resolution{}, &NoMatchError{Query: query, Threshold: r.minScore}
	}
	best, score := r.best(q, r.entries)
	if score < r.minScore {
		return Resolution{}, &NoMatchError{
			Query:     query,
			BestTitle: best.title,
			BestScore: score,
			Threshold: r.minScore,
		}
	}
	return Resolution{ItemID: best.id, Title: best.title, Method: types.MatchFuzzy, Score: score}, nil
}

// best returns the highest-scoring candidate. Candidates are already in
// title order, so keeping the first strict maximum breaks ties by title.
func (r *Resolver) best(q string, candidates []entry) (entry, int) {
	bestIdx, bestScore := 0, -1
	for i, e := range candidates {
		score := r.similarity.Score(q, e.lower)
		if score > bestScore {
			bestIdx, bestScore = i, score
		}
	}
	return candidates[bestIdx], bestScore
}
