package cache

import "fmt"

// Keyer generates cache keys for the measurement domains.
// Implementations must be deterministic: equal inputs, equal keys.
type Keyer interface {
	// TextKey generates a key for a single text measurement.
	TextKey(family string, size float64, bold, italic bool, content string) string

	// FrameKey generates a key for a whole-frame measurement.
	FrameKey(mediaID, itemsHash string) string

	// ArtifactKey generates a key for a rendered preview artifact.
	ArtifactKey(itemsHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts carries the rendering inputs that change artifact bytes.
type ArtifactKeyOpts struct {
	MediaID string
	Format  string
	Scale   float64
}

// DefaultKeyer is the standard key scheme.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// TextKey generates a key for a single text measurement.
func (k *DefaultKeyer) TextKey(family string, size float64, bold, italic bool, content string) string {
	style := fmt.Sprintf("%s:%g:%t:%t", family, size, bold, italic)
	return hashKey("text", style, content)
}

// FrameKey generates a key for a whole-frame measurement.
func (k *DefaultKeyer) FrameKey(mediaID, itemsHash string) string {
	return hashKey("frame", mediaID, itemsHash)
}

// ArtifactKey generates a key for a rendered preview artifact.
func (k *DefaultKeyer) ArtifactKey(itemsHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", itemsHash, opts.MediaID, opts.Format, opts.Scale)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
