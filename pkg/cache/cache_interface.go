package cache

import (
	"context"
	"time"
)

// Cache is the contract of the response cache layer.
// Implementations: Redis (infrastructure/cache) and in-process Memory.
type Cache interface {
	// Get loads key into dest.
	// found = false on a miss, dest is left untouched.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes keys.
	Delete(ctx context.Context, keys ...string) error

	// DeletePattern removes every key matching a glob pattern (e.g. "movies:*").
	DeletePattern(ctx context.Context, pattern string) error

	Ping(ctx context.Context) error
}

// TagPattern is the glob covering every entry stored under tag.
func TagPattern(tag string) string {
	return tag + ":*"
}

// EvictTag removes every entry stored under tag.
func EvictTag(ctx context.Context, c Cache, tag string) error {
	return c.DeletePattern(ctx, TagPattern(tag))
}
