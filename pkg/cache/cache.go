// Package cache provides content-addressed caching for layout measurement.
//
// Measuring text requires loading font faces and rasterizer state, which
// dominates headless measurement time. Results are tiny and immutable for a
// given input, so they cache extremely well. The same store fronts whole
// frame measurements and rendered preview artifacts.
//
// # Architecture
//
// The package separates three concerns:
//   - Cache: the storage backend (file-based for CLI use, null to disable)
//   - Keyer: turns measurement inputs into stable cache keys
//   - TTLs: per-entry lifetimes, generous because keys are content-addressed
//
// # Usage
//
//	c, err := cache.NewFileCache(dir)
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	keyer := cache.NewDefaultKeyer()
//	key := keyer.TextKey("sans", 28, true, false, "Artikelname:")
//	if data, ok, _ := c.Get(ctx, key); ok {
//	    // decode cached measurement
//	}
package cache

import (
	"context"
	"time"
)

// Cache lifetimes. Keys are content-addressed, so entries never go stale;
// the TTLs only bound disk growth.
const (
	// TTLMeasure applies to single text measurements.
	TTLMeasure = 30 * 24 * time.Hour

	// TTLFrame applies to whole-frame measurement results.
	TTLFrame = 7 * 24 * time.Hour

	// TTLArtifact applies to rendered preview artifacts.
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is the interface for measurement cache backends.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present and fresh.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A zero TTL stores forever.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
