package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// SetupTestRedis returns a client for VENUEHUB_TEST_REDIS_URL. The test is
// skipped when the variable is unset or the server is unreachable.
func SetupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	url := os.Getenv("VENUEHUB_TEST_REDIS_URL")
	if url == "" {
		t.Skip("VENUEHUB_TEST_REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		t.Fatalf("parse redis url: %v", err)
	}
	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		t.Skipf("redis unreachable: %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}
