// Package cache is a time-boxed read-through cache over the external work log and
// reference data sources. Entries are immutable and expire independently per key.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/genf/workreport/pkg/utils/logging"
)

// DefaultTTL matches the refresh interval of the upstream sources
const DefaultTTL = 10 * time.Minute

const keyPrefix = "workreport:"

// Cache stores opaque values under string keys with a per-entry TTL
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Key derives a cache key from a query and its parameters
func Key(query string, params ...any) string {
	h := sha256.New()
	h.Write([]byte(query))
	for _, p := range params {
		b, err := json.Marshal(p)
		if err != nil {
			b = []byte(fmt.Sprint(p))
		}
		h.Write([]byte{0})
		h.Write(b)
	}
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}

// ReadThrough returns the cached value for key or calls fetch and caches its result.
// Cache failures are logged and never fail the read.
func ReadThrough[T any](ctx context.Context, c Cache, key string, ttl time.Duration, logger *zap.Logger, fetch func(ctx context.Context) (T, error)) (T, error) {
	logger = logging.OrNop(logger).With(zap.String(logging.FieldCacheKey, key))

	if c != nil {
		raw, ok, err := c.Get(ctx, key)
		switch {
		case err != nil:
			logger.Warn("Cache read failed, fetching from source", zap.Error(err))
		case ok:
			var v T
			err := json.Unmarshal(raw, &v)
			if err == nil {
				logger.Debug("Cache hit")
				return v, nil
			}
			logger.Warn("Discarding undecodable cache entry", zap.Error(err))
		default:
			logger.Debug("Cache miss")
		}
	}

	v, err := fetch(ctx)
	if err != nil {
		return v, err
	}

	if c != nil {
		raw, err := json.Marshal(v)
		if err != nil {
			logger.Warn("Failed to encode value for cache", zap.Error(err))
			return v, nil
		}
		if err := c.Set(ctx, key, raw, ttl); err != nil {
			logger.Warn("Cache write failed", zap.Error(err))
		}
	}
	return v, nil
}

// Nop never stores anything
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (Nop) Set(context.Context, string, []byte, time.Duration) error { return nil }
