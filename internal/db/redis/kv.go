package redis

import (
	"context"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/jobscout/internal/db"
)

// scanCount is the COUNT hint per SCAN round trip.
const scanCount = 500

// Get retrieves a value by key. With a local cache TTL the read is served from
// the client-side cache, which the server invalidates on write.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var res rueidis.RedisResult
	if s.localTTL > 0 {
		res = s.client.DoCache(ctx, s.b().Get().Key(key).Cache(), s.localTTL)
	} else {
		res = s.do(ctx, s.b().Get().Key(key).Build())
	}
	data, err := res.AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, db.ErrKeyNotFound
		}
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
	return data, nil
}

// SetWithTTL stores a value with an expiration.
func (s *Store) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	cmd := s.b().Set().Key(key).Value(rueidis.BinaryString(value)).Ex(ttl).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}

// Del removes keys with UNLINK so a large purge does not block the server.
// Missing keys are not an error. Keys are sent in batches of scanCount.
func (s *Store) Del(ctx context.Context, keys ...string) error {
	for len(keys) > 0 {
		n := min(len(keys), scanCount)
		cmd := s.b().Unlink().Key(keys[:n]...).Build()
		if err := s.do(ctx, cmd).Error(); err != nil {
			return &db.Error{Op: db.OpUnlink, Err: err}
		}
		keys = keys[n:]
	}
	return nil
}

// Scan returns every key matching pattern, following the cursor to the end.
func (s *Store) Scan(ctx context.Context, pattern string) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)
	for {
		cmd := s.b().Scan().Cursor(cursor).Match(pattern).Count(scanCount).Build()
		entry, err := s.do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, &db.Error{Op: db.OpScan, Err: err}
		}
		keys = append(keys, entry.Elements...)
		cursor = entry.Cursor
		if cursor == 0 {
			return keys, nil
		}
	}
}
