// Package cache provides the byte-oriented cache backends shared by the
// registry clients and the Docker tag resolver.
//
// Backends:
//   - [MemoryCache]: in-process map with per-entry expiry (the default for the server)
//   - [FileCache]: one JSON file per entry, used by the CLI between runs
//   - [RedisCache]: shared cache for several server replicas
//   - [NullCache]: caching disabled
//
// Values are opaque bytes; callers marshal their own payloads. A TTL of 0
// means the entry never expires.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque values under string keys with a per-entry TTL.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key. hit is false when the key is missing
	// or expired; err is reserved for backend failures.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. A ttl of 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
