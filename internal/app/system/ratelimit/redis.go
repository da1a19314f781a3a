// internal/app/system/ratelimit/redis.go
package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisLimiter is a Store shared across instances. Counters live under
// prefix+key and expire with their window. Redis errors fail open.
type RedisLimiter struct {
	rdb      *redis.Client
	prefix   string
	limit    int
	duration time.Duration
	log      *zap.Logger
}

// NewRedis returns a Redis-backed Store.
func NewRedis(rdb *redis.Client, prefix string, limit int, duration time.Duration, logger *zap.Logger) *RedisLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisLimiter{rdb: rdb, prefix: prefix, limit: limit, duration: duration, log: logger}
}

// Allow implements Store.
func (l *RedisLimiter) Allow(ctx context.Context, key string) bool {
	k := l.prefix + key
	n, err := l.rdb.Incr(ctx, k).Result()
	if err != nil {
		l.log.Warn("rate limit incr failed; allowing", zap.String("key", k), zap.Error(err))
		return true
	}
	if n == 1 {
		if err := l.rdb.Expire(ctx, k, l.duration).Err(); err != nil {
			l.log.Warn("rate limit expire failed", zap.String("key", k), zap.Error(err))
		}
	}
	return n <= int64(l.limit)
}

// Reset implements Store.
func (l *RedisLimiter) Reset(ctx context.Context, key string) {
	if err := l.rdb.Del(ctx, l.prefix+key).Err(); err != nil {
		l.log.Warn("rate limit reset failed", zap.String("key", l.prefix+key), zap.Error(err))
	}
}
