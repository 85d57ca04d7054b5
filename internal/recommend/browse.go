package recommend

import (
	"sort"

	"github.com/saeedalam/dramarec/pkg/types"
)

// rankByRating orders item positions by rating descending, then title, then id.
func (e *Engine) rankByRating() []int {
	order := make([]int, len(e.items))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := e.items[order[i]], e.items[order[j]]
		if a.Rating != b.Rating {
			return a.Rating > b.Rating
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return a.ID < b.ID
	})
	return order
}

// TopRated returns one page of the catalog sorted by rating, best first.
// Pages are 1-based; a page past the end is empty.
func (e *Engine) TopRated(page, pageSize int) ([]types.Item, error) {
	if page < 1 || pageSize < 1 {
		return nil, ErrInvalidPage
	}

	start := (page - 1) * pageSize
	if start >= len(e.byRating) {
		return []types.Item{}, nil
	}
	end := min(start+pageSize, len(e.byRating))

	out := make([]types.Item, 0, end-start)
	for _, pos := range e.byRating[start:end] {
		out = append(out, e.items[pos])
	}
	return out, nil
}

// TotalPages returns how many pages of pageSize the catalog spans.
func (e *Engine) TotalPages(pageSize int) int {
	if pageSize < 1 {
		return 0
	}
	return (len(e.items) + pageSize - 1) / pageSize
}
