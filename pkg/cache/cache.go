// Package cache stores rendered artifacts and fetched workflow definitions.
//
// Three backends implement [Cache]: [FileCache] for the CLI (under the XDG
// cache directory), [RedisCache] for servers sharing a cache, and
// [NullCache] when caching is disabled. Keys come from a [Keyer] so every
// caller derives them the same way.
//
// A cache never changes what is rendered: every entry is keyed by a content
// hash of all inputs, so a hit returns exactly what a fresh render would.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key-value store with optional expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Default TTLs.
const (
	// WorkflowTTL bounds how long a fetched workflow definition is reused.
	WorkflowTTL = 5 * time.Minute

	// ArtifactTTL bounds how long a rendered artifact is kept.
	ArtifactTTL = 24 * time.Hour
)
