// Package cache provides pluggable storage backends for upstream response
// caching.
//
// The status API imposes its own rate limits, so lookups are cached for a
// short TTL. The [Cache] interface abstracts where that cache lives:
//
//   - [MemoryCache]: in-process map, the library default
//   - [FileCache]: on-disk entries for CLI usage across invocations
//   - [RedisCache]: shared cache for the proxy server
//   - [NullCache]: caching disabled
//
// All backends store opaque bytes; serialization is the caller's concern.
// Expired entries are evicted lazily on access, never by a background sweep.
package cache

import (
	"context"
	"time"
)

// Cache is a key-value store with per-entry TTL.
//
// Implementations must be safe for concurrent use. A TTL of zero or less
// means the entry never expires (where the backend supports it).
type Cache interface {
	// Get returns the stored bytes for key. ok is false on a miss or an
	// expired entry; expiry is not an error.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Set stores data under key for ttl.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key; deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the backend.
	Close() error
}
