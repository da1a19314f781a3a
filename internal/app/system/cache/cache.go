// Package cache keeps JSON snapshots of read-heavy lists in Redis. A nil
// *Cache is valid and always misses, so Redis stays optional.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dalemusser/venuehub/internal/app/system/metrics"
	"github.com/redis/go-redis/v9"
)

// Cache wraps a Redis client with a key prefix.
type Cache struct {
	rdb    *redis.Client
	prefix string
}

// New returns a Cache, or nil when rdb is nil.
func New(rdb *redis.Client, prefix string) *Cache {
	if rdb == nil {
		return nil
	}
	return &Cache{rdb: rdb, prefix: prefix}
}

// GetJSON loads key into dest. It reports false on a miss.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if c == nil {
		return false, nil
	}
	val, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.ObserveCache(false)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, err
	}
	metrics.ObserveCache(true)
	return true, nil
}

// SetJSON stores value under key for ttl.
func (c *Cache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if c == nil {
		return nil
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.prefix+key, b, ttl).Err()
}

// Delete removes keys.
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if c == nil || len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.prefix + k
	}
	return c.rdb.Del(ctx, full...).Err()
}
