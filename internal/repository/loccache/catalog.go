// Package loccache caches location catalog reads in a key-value store.
package loccache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jobscout/internal/db"
	"github.com/kailas-cloud/jobscout/internal/domain/location"
)

// DefaultKeyPrefix namespaces cache keys.
const DefaultKeyPrefix = "jobscout:loc:"

// DefaultTTL bounds how stale a cached catalog page may be.
const DefaultTTL = 10 * time.Minute

// Catalog is the decorated location catalog.
type Catalog interface {
	List(ctx context.Context, level location.Level, parentID int64, offset, limit int) ([]location.Entity, error)
	FindByName(ctx context.Context, level location.Level, name string, limit int) ([]location.Entity, error)
	Get(ctx context.Context, level location.Level, id int64) (location.Entity, error)
}

// store is the consumer interface for the cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// CachedCatalog serves catalog reads from the store and falls through to inner on a miss.
// Cache failures are logged and never surface to the caller.
type CachedCatalog struct {
	inner      Catalog
	store      store
	prefix     string
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(inner Catalog, s store, cacheTotal *prometheus.CounterVec, logger *zap.Logger) *CachedCatalog {
	return &CachedCatalog{
		inner:      inner,
		store:      s,
		prefix:     DefaultKeyPrefix,
		ttl:        DefaultTTL,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// WithKeyPrefix overrides DefaultKeyPrefix.
func (c *CachedCatalog) WithKeyPrefix(prefix string) *CachedCatalog {
	if prefix != "" {
		c.prefix = prefix
	}
	return c
}

// WithTTL overrides DefaultTTL.
func (c *CachedCatalog) WithTTL(ttl time.Duration) *CachedCatalog {
	if ttl > 0 {
		c.ttl = ttl
	}
	return c
}

// List implements Catalog.
func (c *CachedCatalog) List(
	ctx context.Context, level location.Level, parentID int64, offset, limit int,
) ([]location.Entity, error) {
	key := fmt.Sprintf("%slist:%s:%d:%d:%d", c.prefix, level, parentID, offset, limit)
	return cached(ctx, c, key, func() ([]location.Entity, error) {
		return c.inner.List(ctx, level, parentID, offset, limit)
	})
}

// FindByName implements Catalog.
func (c *CachedCatalog) FindByName(
	ctx context.Context, level location.Level, name string, limit int,
) ([]location.Entity, error) {
	h := sha256.Sum256([]byte(location.NormalizeName(name)))
	key := fmt.Sprintf("%sname:%s:%s:%d", c.prefix, level, hex.EncodeToString(h[:]), limit)
	return cached(ctx, c, key, func() ([]location.Entity, error) {
		return c.inner.FindByName(ctx, level, name, limit)
	})
}

// Get implements Catalog. Misses in the catalog are not cached.
func (c *CachedCatalog) Get(ctx context.Context, level location.Level, id int64) (location.Entity, error) {
	key := fmt.Sprintf("%sget:%s:%d", c.prefix, level, id)
	return cached(ctx, c, key, func() (location.Entity, error) {
		return c.inner.Get(ctx, level, id)
	})
}

// Purge drops every cached entry under the prefix.
func (c *CachedCatalog) Purge(ctx context.Context) (int, error) {
	keys, err := c.store.Scan(ctx, c.prefix+"*")
	if err != nil {
		return 0, fmt.Errorf("scan cache keys: %w", err)
	}
	if err := c.store.Del(ctx, keys...); err != nil {
		return 0, fmt.Errorf("delete cache keys: %w", err)
	}
	c.logger.Info("Location cache purged", zap.Int("keys", len(keys)))
	return len(keys), nil
}

// cached is the read-through path shared by every catalog method.
func cached[T any](ctx context.Context, c *CachedCatalog, key string, load func() (T, error)) (T, error) {
	if v, ok := getFromCache[T](ctx, c, key); ok {
		c.incCache("hit")
		return v, nil
	}
	c.incCache("miss")

	v, err := load()
	if err != nil {
		return v, err
	}
	c.putToCache(ctx, key, v)
	return v, nil
}

func (c *CachedCatalog) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func getFromCache[T any](ctx context.Context, c *CachedCatalog, key string) (T, bool) {
	var v T
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to read location cache", zap.String("key", key), zap.Error(err))
		}
		return v, false
	}
	if len(data) == 0 {
		return v, false
	}
	if err := json.Unmarshal(data, &v); err != nil {
		c.logger.Warn("Failed to parse cached location entry", zap.String("key", key), zap.Error(err))
		return v, false
	}
	return v, true
}

func (c *CachedCatalog) putToCache(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("Failed to encode location entry", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache location entry", zap.String("key", key), zap.Error(err))
	}
}
