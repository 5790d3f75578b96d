// Package cache provides the TTL key-value store used to memoize
// prediction results, with a Redis backend and an in-memory fallback.
package cache

import (
	"context"
	"time"
)

// Store is the cache contract consumed by the prediction pipeline.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value for key, or ok=false when the key is absent
	// or expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key for at most ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Increment atomically bumps the named counter and returns its new value.
	Increment(ctx context.Context, key string) (int64, error)
	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error
	Close() error
}
