package loccache

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/jobscout/internal/db"
	"github.com/kailas-cloud/jobscout/internal/domain/location"
	locrepo "github.com/kailas-cloud/jobscout/internal/repository/location"
)

// countingCatalog wraps the in-memory catalog and counts calls per method.
type countingCatalog struct {
	*locrepo.MemoryCatalog
	lists, finds, gets int
	err                error
}

func (c *countingCatalog) List(
	ctx context.Context, level location.Level, parentID int64, offset, limit int,
) ([]location.Entity, error) {
	c.lists++
	if c.err != nil {
		return nil, c.err
	}
	return c.MemoryCatalog.List(ctx, level, parentID, offset, limit)
}

func (c *countingCatalog) FindByName(
	ctx context.Context, level location.Level, name string, limit int,
) ([]location.Entity, error) {
	c.finds++
	if c.err != nil {
		return nil, c.err
	}
	return c.MemoryCatalog.FindByName(ctx, level, name, limit)
}

func (c *countingCatalog) Get(ctx context.Context, level location.Level, id int64) (location.Entity, error) {
	c.gets++
	if c.err != nil {
		return location.Entity{}, c.err
	}
	return c.MemoryCatalog.Get(ctx, level, id)
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	ttls   map[string]time.Duration
	getErr error
	setErr error
}

func newMockKVStore() *mockKVStore {
	return &mockKVStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *mockKVStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockKVStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *mockKVStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *mockKVStore) Scan(_ context.Context, pattern string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	var keys []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func newTestCatalog(t *testing.T) (*CachedCatalog, *countingCatalog, *mockKVStore) {
	t.Helper()
	inner := &countingCatalog{MemoryCatalog: locrepo.NewMemoryCatalog(
		location.Country{ID: 1, Name: "India"}.Entity(),
		location.State{ID: 10, Name: "Maharashtra", CountryID: 1}.Entity(),
		location.City{ID: 100, Name: "Mumbai", StateID: 10, CountryID: 1}.Entity(),
		location.Area{ID: 1000, Name: "Bandra", CityID: 100}.Entity(),
	)}
	ms := newMockKVStore()
	return New(inner, ms, nil, zap.NewNop()), inner, ms
}
