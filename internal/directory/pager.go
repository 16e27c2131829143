package directory

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/mrr-sync/pkg/canny"
)

// Pagination strategies selectable from configuration.
const (
	PaginationFixed      = "fixed"
	PaginationExhaustive = "exhaustive"
)

// Page describes a page that has already been requested.
type Page struct {
	Limit   int
	Skip    int
	Count   int // companies returned
	HasMore bool
	Err     error
}

// PageProvider decides which page to request next. prev is nil before the
// first request; ok=false ends the listing.
type PageProvider interface {
	Next(prev *Page) (limit, skip int, ok bool)
}

// FixedPager walks skip = 0, PageSize, 2*PageSize, ... while skip < Total.
// Total is an estimate of the directory size; companies past it are never
// requested.
type FixedPager struct {
	Total    int
	PageSize int
}

// Next implements PageProvider.
func (p FixedPager) Next(prev *Page) (int, int, bool) {
	skip := 0
	if prev != nil {
		skip = prev.Skip + p.PageSize
	}
	if p.PageSize <= 0 || skip >= p.Total {
		return 0, 0, false
	}
	return p.PageSize, skip, true
}

// ExhaustivePager keeps requesting pages until one comes back short, fails
// or reports hasMore=false, regardless of any configured total.
type ExhaustivePager struct {
	PageSize int
}

// Next implements PageProvider.
func (p ExhaustivePager) Next(prev *Page) (int, int, bool) {
	if p.PageSize <= 0 {
		return 0, 0, false
	}
	if prev == nil {
		return p.PageSize, 0, true
	}
	if prev.Err != nil || prev.Count < prev.Limit || !prev.HasMore {
		return 0, 0, false
	}
	return p.PageSize, prev.Skip + p.PageSize, true
}

// NewPager builds the pager named by strategy. The page size is clamped to
// Canny's maximum of 100.
func NewPager(strategy string, total, pageSize int) (PageProvider, error) {
	if pageSize <= 0 || pageSize > canny.MaxPageSize {
		pageSize = canny.MaxPageSize
	}
	switch strategy {
	case "", PaginationFixed:
		return FixedPager{Total: total, PageSize: pageSize}, nil
	case PaginationExhaustive:
		return ExhaustivePager{PageSize: pageSize}, nil
	default:
		return nil, eris.Errorf("directory: unknown pagination %q", strategy)
	}
}
