// Package pipeline assembles the editing engine around a layout state.
//
// Applying an action batch takes a workspace, a render scheduler, the
// normalization chain, and the action bridge, wired together in the right
// order. Both the CLI and the HTTP service need that assembly, plus cached
// preview rendering on top of it, so this package centralizes both and the
// entry points stay thin.
//
// # Architecture
//
// A [Runner] holds the long-lived pieces: the artifact cache, the measurer,
// the media registry, and preview settings. Each [Runner.Apply] call builds
// a fresh engine around the given [State], runs the batch, and returns the
// updated state; nothing batch-scoped survives the call. [Runner.Preview]
// measures the state and renders it to one of the supported formats,
// fronted by the content-addressed artifact cache.
//
// # Usage
//
//	runner := pipeline.NewRunner(pipeline.Config{Cache: c, Logger: logger})
//	defer runner.Close()
//
//	st := pipeline.State{Media: "tape-12"}
//	st, res, err := runner.Apply(ctx, st, batch)
//	if err != nil {
//	    return err
//	}
//	png, hit, err := runner.Preview(ctx, st, pipeline.PreviewOptions{
//	    Format: pipeline.FormatPNG,
//	})
package pipeline

import (
	"github.com/charmbracelet/log"

	"github.com/labelsmith/labelsmith/pkg/cache"
	"github.com/labelsmith/labelsmith/pkg/errors"
	"github.com/labelsmith/labelsmith/pkg/item"
	"github.com/labelsmith/labelsmith/pkg/media"
	"github.com/labelsmith/labelsmith/pkg/preview"
	"github.com/labelsmith/labelsmith/pkg/render"
)

// =============================================================================
// Formats
// =============================================================================

// Preview artifact formats.
const (
	// FormatPNG is the raster preview of the layout as it would print.
	FormatPNG = "png"

	// FormatSVG is the bounds-debug view rendered through graphviz.
	FormatSVG = "svg"

	// FormatDOT is the bounds-debug view as DOT source.
	FormatDOT = "dot"
)

// validFormats is the set of supported preview formats.
var validFormats = map[string]bool{FormatPNG: true, FormatSVG: true, FormatDOT: true}

// ValidateFormat checks that format names a supported preview artifact.
func ValidateFormat(format string) error {
	if !validFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %s (must be 'png', 'svg', or 'dot')", format)
	}
	return nil
}

// =============================================================================
// State
// =============================================================================

// State is the layout state a batch runs against: the media profile id,
// the items, and the current selection. It is plain data so callers can
// persist it however they like (session stores, layout files).
type State struct {
	// Media is the profile id. Empty selects the registry default.
	Media string

	Items       item.List
	SelectedIDs []string
}

// =============================================================================
// Config
// =============================================================================

// Config configures a Runner. The zero value runs with headless
// measurement, the builtin media registry, and no cache.
type Config struct {
	// Cache fronts rendered preview artifacts. Nil disables caching.
	Cache cache.Cache

	// Keyer generates artifact cache keys. Defaults to the standard scheme.
	Keyer cache.Keyer

	// Measurer produces frames. Defaults to a headless measurer with
	// discovered system fonts.
	Measurer render.Measurer

	// Media resolves profile ids. Defaults to the builtin registry.
	Media *media.Registry

	// Preview configures artifact rendering (scale, font, logger).
	Preview preview.Options

	Logger *log.Logger
}
