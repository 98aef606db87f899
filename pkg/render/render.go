package render

import (
	"context"

	"github.com/labelsmith/labelsmith/pkg/geom"
	"github.com/labelsmith/labelsmith/pkg/item"
	"github.com/labelsmith/labelsmith/pkg/media"
)

// Frame is the result of one measurement pass: the canvas extent and the
// rendered bounds of every item, keyed by item id. Bounds are rotation
// applied, in device units.
type Frame struct {
	Canvas geom.Size            `json:"canvas"`
	Bounds map[string]geom.Rect `json:"bounds"`
}

// BoundsOf returns the rendered bounds for an item id.
func (f Frame) BoundsOf(id string) (geom.Rect, bool) {
	r, ok := f.Bounds[id]
	return r, ok
}

// Missing returns the subset of ids that have no bounds in the frame,
// preserving order.
func (f Frame) Missing(ids []string) []string {
	var out []string
	for _, id := range ids {
		if _, ok := f.Bounds[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

// ContentExtent returns the union of all item bounds. The zero Rect means
// the frame is empty.
func (f Frame) ContentExtent() geom.Rect {
	var ext geom.Rect
	for _, r := range f.Bounds {
		ext = ext.Union(r)
	}
	return ext
}

// Clone returns a copy with its own bounds map.
func (f Frame) Clone() Frame {
	bounds := make(map[string]geom.Rect, len(f.Bounds))
	for id, r := range f.Bounds {
		bounds[id] = r
	}
	return Frame{Canvas: f.Canvas, Bounds: bounds}
}

// Measurer computes a frame for an item snapshot on a given medium.
//
// Implementations must treat the snapshot as read-only and must be safe for
// use from the scheduler goroutine.
type Measurer interface {
	Measure(ctx context.Context, items item.List, profile media.Profile) (Frame, error)
}

// MeasurerFunc adapts a function to the Measurer interface.
type MeasurerFunc func(ctx context.Context, items item.List, profile media.Profile) (Frame, error)

// Measure implements Measurer.
func (fn MeasurerFunc) Measure(ctx context.Context, items item.List, profile media.Profile) (Frame, error) {
	return fn(ctx, items, profile)
}
