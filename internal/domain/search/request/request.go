package request

import (
	"fmt"
	"math"

	"github.com/kailas-cloud/jobscout/internal/domain"
	"github.com/kailas-cloud/jobscout/internal/domain/search/filter"
	"github.com/kailas-cloud/jobscout/internal/domain/search/ranking"
)

// Pagination defaults.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Limits bounds the page size a caller may request.
type Limits struct {
	DefaultPageSize int
	MaxPageSize     int
}

// DefaultLimits returns the built-in page size limits.
func DefaultLimits() Limits {
	return Limits{DefaultPageSize: DefaultPageSize, MaxPageSize: MaxPageSize}
}

// Request is a validated search query.
type Request struct {
	filter   filter.Filter
	strategy ranking.Strategy
	page     int
	pageSize int
}

// New validates and normalizes search parameters.
// Defaults: strategy=recent, page=1, pageSize=limits.DefaultPageSize. pageSize is clamped to limits.MaxPageSize.
// A page whose offset would overflow int is rejected with domain.ErrInvalidRequest.
// Distance ranking without a proximity facet fails fast with domain.ErrProximityRequired.
func New(f filter.Filter, strategy ranking.Strategy, page, pageSize int, limits Limits) (Request, error) {
	if strategy == "" {
		strategy = ranking.Default
	}
	if !strategy.IsValid() {
		return Request{}, fmt.Errorf("invalid sort %q: %w", strategy, domain.ErrInvalidRequest)
	}
	if _, ok := f.Proximity(); strategy.NeedsProximity() && !ok {
		return Request{}, domain.ErrProximityRequired
	}
	if limits.DefaultPageSize <= 0 {
		limits.DefaultPageSize = DefaultPageSize
	}
	if limits.MaxPageSize <= 0 {
		limits.MaxPageSize = MaxPageSize
	}
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = limits.DefaultPageSize
	}
	if pageSize > limits.MaxPageSize {
		pageSize = limits.MaxPageSize
	}
	if page > math.MaxInt/pageSize {
		return Request{}, fmt.Errorf("page %d is out of range: %w", page, domain.ErrInvalidRequest)
	}

	return Request{filter: f, strategy: strategy, page: page, pageSize: pageSize}, nil
}

// Filter returns the composed filter.
func (r *Request) Filter() filter.Filter { return r.filter }

// Strategy returns the ranking strategy.
func (r *Request) Strategy() ranking.Strategy { return r.strategy }

// Page returns the 1-based page number.
func (r *Request) Page() int { return r.page }

// PageSize returns the number of items per page.
func (r *Request) PageSize() int { return r.pageSize }

// Offset returns the index of the first item of the page in the ranked sequence.
func (r *Request) Offset() int { return (r.page - 1) * r.pageSize }
