package ledger

import (
	"fmt"
	"math"
)

// PagedResult is one page of a search plus the size of the whole match set.
type PagedResult struct {
	Results []Transaction
	Total   int
}

// PageOffset converts a 1-indexed page into a record offset.
func PageOffset(page, size int) (int, error) {
	if page <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidPage, page)
	}
	if size > 0 && page-1 > math.MaxInt/size {
		return 0, fmt.Errorf("%w: %d is out of range", ErrInvalidPage, page)
	}
	return size * (page - 1), nil
}
