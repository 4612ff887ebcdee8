package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// KV stores session keys in Redis. Writes of several keys go through a
// MULTI/EXEC pipeline so they land together. Against a cluster, keys written
// or deleted together must share a hash tag.
type KV struct {
	client redis.UniversalClient
}

// NewKV wraps client.
func NewKV(client redis.UniversalClient) *KV {
	return &KV{client: client}
}

func (k *KV) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := k.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return v, true, nil
}

func (k *KV) SetAll(ctx context.Context, values map[string]string, ttl time.Duration) error {
	if len(values) == 0 {
		return nil
	}
	_, err := k.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for key, v := range values {
			pipe.Set(ctx, key, v, ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (k *KV) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := k.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
