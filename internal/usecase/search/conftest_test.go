package search

import (
	"context"
	"sync"
	"time"

	"github.com/kailas-cloud/jobscout/internal/domain/listing"
)

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func i64(v int64) *int64      { return &v }
func f64(v float64) *float64  { return &v }
func daysAgo(n int) time.Time { return baseTime.AddDate(0, 0, -n) }

// mockStore records the calls made by the service.
type mockStore struct {
	mu         sync.Mutex
	listings   []listing.Listing
	count      int
	searchErr  error
	countErr   error
	lastParams listing.Params
	lastLimit  int
	lastOffset int
	countCalls int
}

func (m *mockStore) Search(_ context.Context, params listing.Params, limit, offset int) ([]listing.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastParams, m.lastLimit, m.lastOffset = params, limit, offset
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if offset >= len(m.listings) {
		return nil, nil
	}
	return m.listings[offset:min(offset+limit, len(m.listings))], nil
}

func (m *mockStore) Count(_ context.Context, _ listing.Params) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.countCalls++
	return m.count, m.countErr
}
