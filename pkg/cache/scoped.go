package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation.
// The server uses this to keep tenant caches apart; tests use it to keep
// fixtures from colliding with real entries.
//
// Example usage:
//
//	// Tenant-specific keys
//	tenantKeyer := NewScopedKeyer(NewDefaultKeyer(), "tenant:abc123:")
//
//	// Shared keys
//	globalKeyer := NewDefaultKeyer()
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// TextKey generates a prefixed key for a text measurement.
func (k *ScopedKeyer) TextKey(family string, size float64, bold, italic bool, content string) string {
	return k.prefix + k.inner.TextKey(family, size, bold, italic, content)
}

// FrameKey generates a prefixed key for a frame measurement.
func (k *ScopedKeyer) FrameKey(mediaID, itemsHash string) string {
	return k.prefix + k.inner.FrameKey(mediaID, itemsHash)
}

// ArtifactKey generates a prefixed key for a preview artifact.
func (k *ScopedKeyer) ArtifactKey(itemsHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(itemsHash, opts)
}

// Ensure ScopedKeyer implements Keyer.
var _ Keyer = (*ScopedKeyer)(nil)
