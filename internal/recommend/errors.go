package recommend

import (
	"errors"
	"fmt"

	"github.com/saeedalam/dramarec/internal/resolve"
	"github.com/saeedalam/dramarec/internal/search"
)

var (
	// ErrEmptyCorpus is returned by New when there are no items to index.
	ErrEmptyCorpus = search.ErrEmptyCorpus
	// ErrDuplicateItem is returned by New when two items share an id.
	ErrDuplicateItem = errors.New("duplicate item id")
	// ErrUnknownItem is returned for ids that are not in the catalog.
	ErrUnknownItem = errors.New("unknown item id")
	// ErrInvalidPage is returned by TopRated for non-positive page or page size.
	ErrInvalidPage = errors.New("page and page size must be positive")
)

// NoMatchError is returned when a query cannot be resolved to an item.
type NoMatchError = resolve.NoMatchError

// InvalidCountError is returned when a non-positive result count is requested.
type InvalidCountError struct {
	Count int
}

func (e *InvalidCountError) Error() string {
	return fmt.Sprintf("invalid count %d: must be positive", e.Count)
}
