package cache

import (
	"context"
	"time"
)

// Cache is the contract for the cache layer, allowing implementations to be
// swapped (Redis, in-memory).
type Cache interface {
	// Get reads a key and unmarshals it into dest. The bool reports a cache
	// hit; on a miss dest is left untouched.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores a value under key with a TTL.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes keys from the cache.
	Delete(ctx context.Context, keys ...string) error

	// DeletePattern removes all keys matching a glob pattern.
	DeletePattern(ctx context.Context, pattern string) error

	// Ping verifies the connection.
	Ping(ctx context.Context) error
}
