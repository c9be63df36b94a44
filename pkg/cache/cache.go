// Package cache stores rendered artifacts and diagrams between runs.
//
// Backends implement [Cache]: [NullCache] disables caching, [FileCache]
// keeps entries under a local directory for the CLI, and [RedisCache]
// shares entries between server instances. Keys come from a [Keyer] so
// every component derives them the same way.
package cache

import (
	"context"
	"time"
)

// Default time-to-live values for cached entries.
const (
	TTLDiagram  = 7 * 24 * time.Hour
	TTLArtifact = 30 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the value for key. A miss returns (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the backend's resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry.
type Clearer interface {
	Clear(ctx context.Context) error
}
