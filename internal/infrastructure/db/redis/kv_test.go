package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis connects to REDIS_TEST_ADDR and skips when it is unset or
// unreachable.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	client, err := Connect(context.Background(), Config{Addr: addr, DB: 15, Timeout: 2 * time.Second})
	if err != nil {
		t.Skipf("Redis not available for testing: %v", err)
	}
	t.Cleanup(func() {
		_ = client.FlushDB(context.Background()).Err()
		_ = client.Close()
	})
	return client
}

func TestKV_SetAllGetDelete(t *testing.T) {
	client := setupTestRedis(t)
	kv := NewKV(client)
	ctx := context.Background()

	require.NoError(t, kv.SetAll(ctx, map[string]string{"p3:{s}:token": "tok", "p3:{s}:user": "{}"}, time.Minute))

	v, ok, err := kv.Get(ctx, "p3:{s}:token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok", v)

	ttl, err := client.TTL(ctx, "p3:{s}:user").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, kv.Delete(ctx, "p3:{s}:token", "p3:{s}:user"))
	_, ok, err = kv.Get(ctx, "p3:{s}:user")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKV_GetMissing(t *testing.T) {
	kv := NewKV(setupTestRedis(t))

	_, ok, err := kv.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}
