package search

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/jobscout/internal/domain"
	"github.com/kailas-cloud/jobscout/internal/domain/listing"
	"github.com/kailas-cloud/jobscout/internal/domain/search/request"
	"github.com/kailas-cloud/jobscout/internal/domain/search/result"
)

// DefaultBatchSize is the candidate batch fetched when client-side facets are active.
const DefaultBatchSize = 500

// Service runs listing searches against the external store.
type Service struct {
	store     ListingStore
	batchSize int
	searches  *prometheus.CounterVec
	logger    *zap.Logger
}

// New creates a search service.
func New(store ListingStore, logger *zap.Logger) *Service {
	return &Service{store: store, batchSize: DefaultBatchSize, logger: logger}
}

// WithBatchSize sets the candidate batch size used for client-evaluated searches.
func (s *Service) WithBatchSize(n int) *Service {
	if n > 0 {
		s.batchSize = n
	}
	return s
}

// WithCounter sets the counter vec (labels "sort", "total_source") incremented per completed search.
func (s *Service) WithCounter(c *prometheus.CounterVec) *Service {
	s.searches = c
	return s
}

// Search returns one ranked page.
//
// Without free text or proximity the store filters, orders and windows the page and
// its count is the total. Otherwise a candidate batch is ranked locally and the total
// is the length of the ranked sequence.
func (s *Service) Search(ctx context.Context, req request.Request) (result.Page, error) {
	f := req.Filter()
	params := f.StoreParams(req.Strategy())

	var (
		page result.Page
		err  error
	)
	if f.HasClientFacets() {
		page, err = s.searchBatch(ctx, req, params)
	} else {
		page, err = s.searchWindow(ctx, req, params)
	}
	if err != nil {
		return result.Page{}, err
	}
	if s.searches != nil {
		s.searches.WithLabelValues(string(req.Strategy()), string(page.TotalSource)).Inc()
	}
	return page, nil
}

func (s *Service) searchBatch(ctx context.Context, req request.Request, params listing.Params) (result.Page, error) {
	candidates, err := s.store.Search(ctx, params, s.batchSize, 0)
	if err != nil {
		return result.Page{}, fmt.Errorf("fetch candidates: %w: %w", domain.ErrStoreUnavailable, err)
	}

	page := Run(candidates, req.Filter(), req.Strategy(), req.Page(), req.PageSize())
	page.Truncated = len(candidates) >= s.batchSize
	if page.Truncated {
		s.logger.Debug("Candidate batch filled, results may be incomplete",
			zap.Int("batch_size", s.batchSize), zap.Int("total", page.Total))
	}
	return page, nil
}

func (s *Service) searchWindow(ctx context.Context, req request.Request, params listing.Params) (result.Page, error) {
	var (
		window []listing.Listing
		total  int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		window, err = s.store.Search(gctx, params, req.PageSize(), req.Offset())
		if err != nil {
			return fmt.Errorf("fetch page: %w: %w", domain.ErrStoreUnavailable, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		total, err = s.store.Count(gctx, params)
		if err != nil {
			return fmt.Errorf("count listings: %w: %w", domain.ErrStoreUnavailable, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return result.Page{}, err //nolint:wrapcheck // wrapped inside the group
	}

	// Re-rank the store-ordered window with the pipeline comparator.
	items := rank(filterHits(window, req.Filter()), req.Strategy())
	if len(items) > req.PageSize() {
		items = items[:req.PageSize()]
	}
	return result.Page{
		Items:       items,
		Total:       total,
		TotalSource: result.SourceStore,
		Page:        req.Page(),
		PageSize:    req.PageSize(),
	}, nil
}
