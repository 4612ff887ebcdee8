package ports

import (
	"context"
	"time"
)

// KeyValue is the persistent storage behind the session store.
type KeyValue interface {
	// Get returns the value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// SetAll writes every pair atomically. A zero ttl keeps the keys until
	// they are deleted.
	SetAll(ctx context.Context, values map[string]string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
