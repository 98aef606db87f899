// Package normalize repairs an edited item set into a print-ready layout.
//
// Proposers produce item sets that are structurally right but
// geometrically sloppy: rows overlap, codes overflow the tape, fragments
// repeat. Normalization recognizes the structural intent and rewrites the
// items into a canonical collision-free form, reconciling against measured
// geometry along the way.
//
// # Pass chain
//
// Detection runs in a fixed priority order and the first matching pass
// wins:
//
//  1. inventory card (three labeled German fields plus a qr)
//  2. qr form (heading/value rows beside one qr)
//  3. boxed barcode form (code rows, one barcode, structural shapes)
//  4. generic fallback (dedup and size floors only)
//
// The fallback recognizes no structure, so it always flags low confidence.
// Passes may trigger further measure/adjust cycles through State.Refresh,
// for example downscaling fonts until rows fit.
package normalize

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/labelsmith/labelsmith/pkg/editor"
	"github.com/labelsmith/labelsmith/pkg/item"
	"github.com/labelsmith/labelsmith/pkg/media"
	"github.com/labelsmith/labelsmith/pkg/observability"
	"github.com/labelsmith/labelsmith/pkg/render"
)

// Warning keys surfaced to proposers. Stable strings: upstream prompt
// logic matches on them.
const (
	// WarningLowConfidence means no structural pattern was recognized and
	// only the generic cleanup ran.
	WarningLowConfidence = "assistant.warningNormalizationLowConfidence"

	// WarningOutOfHeadroom means a fit loop ran out of downscale room and
	// the layout may still collide or overflow.
	WarningOutOfHeadroom = "assistant.warningNormalizationOutOfHeadroom"
)

// State is the working context one pass runs against. Frame starts as the
// reconciled post-batch frame; passes that re-measure store the fresh
// frame back.
type State struct {
	Editor editor.Editor
	Media  media.Profile
	Frame  render.Frame

	// Refresh requests a new measurement pass and returns its frame.
	Refresh func(ctx context.Context) (render.Frame, error)

	Logger *log.Logger
}

// Outcome reports what a pass did.
type Outcome struct {
	// Mutated reports whether the item set changed.
	Mutated bool

	// Resolved reports whether placement fully resolved: order, gaps,
	// and containment all verified against measured geometry.
	Resolved bool

	Warnings []string
}

// Pass is one pattern detector plus its normalizer.
type Pass interface {
	// Name identifies the pass in logs and hooks.
	Name() string

	// Match reports whether the item set looks like this pass's pattern.
	Match(items item.List, frame render.Frame) bool

	// Apply rewrites the items into the pass's canonical layout.
	Apply(ctx context.Context, st *State) (Outcome, error)
}

// ChainConfig wires a Chain.
type ChainConfig struct {
	Editor editor.Editor

	// Refresh requests a fresh measurement, usually the scheduler's
	// request/wait pair.
	Refresh func(ctx context.Context) (render.Frame, error)

	// Passes overrides the default pass order. Nil keeps the default.
	Passes []Pass

	Logger *log.Logger
}

// Chain runs the detector chain over the current item set.
type Chain struct {
	editor  editor.Editor
	refresh func(ctx context.Context) (render.Frame, error)
	passes  []Pass
	logger  *log.Logger
}

// DefaultPasses returns the standard pass order.
func DefaultPasses() []Pass {
	return []Pass{
		&inventoryPass{},
		&qrFormPass{},
		&barcodeFormPass{},
		&fallbackPass{},
	}
}

// NewChain creates a chain with the default passes unless overridden.
func NewChain(cfg ChainConfig) *Chain {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	passes := cfg.Passes
	if passes == nil {
		passes = DefaultPasses()
	}
	return &Chain{
		editor:  cfg.Editor,
		refresh: cfg.Refresh,
		passes:  passes,
		logger:  cfg.Logger,
	}
}

// Normalize tries each pass in order against the given frame; exactly the
// first matching pass applies. An empty item set is left alone.
func (c *Chain) Normalize(ctx context.Context, frame render.Frame) ([]string, error) {
	items := c.editor.Items()
	if len(items) == 0 {
		return nil, nil
	}

	st := &State{
		Editor:  c.editor,
		Media:   c.editor.Media(),
		Frame:   frame,
		Refresh: c.refresh,
		Logger:  c.logger,
	}

	hooks := observability.Normalize()
	for _, p := range c.passes {
		if !p.Match(items, frame) {
			continue
		}
		hooks.OnPassMatched(ctx, p.Name())

		start := time.Now()
		out, err := p.Apply(ctx, st)
		hooks.OnPassComplete(ctx, p.Name(), out.Resolved, time.Since(start), err)
		if err != nil {
			return out.Warnings, err
		}
		c.logger.Debug("normalization pass applied",
			"pass", p.Name(), "mutated", out.Mutated, "resolved", out.Resolved)
		return out.Warnings, nil
	}

	return nil, nil
}
