package editor

import (
	"math"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/labelsmith/labelsmith/pkg/geom"
	"github.com/labelsmith/labelsmith/pkg/item"
	"github.com/labelsmith/labelsmith/pkg/media"
	"github.com/labelsmith/labelsmith/pkg/render"
)

// alignEpsilon is the offset delta below which an item counts as already
// aligned.
const alignEpsilon = 1e-6

// FrameSource returns the most recent measured frame, if one exists.
// Usually wired to the render scheduler's Snapshot.
type FrameSource func() (render.Frame, bool)

// WorkspaceOptions configures a Workspace. The zero value uses the default
// media profile and no frame source.
type WorkspaceOptions struct {
	Media  media.Profile
	Frames FrameSource
	Logger *log.Logger
}

// Workspace is the in-memory Editor implementation. Safe for concurrent
// use; the render scheduler reads snapshots while a batch mutates.
type Workspace struct {
	mu       sync.RWMutex
	items    item.List
	selected []string
	media    media.Profile
	frames   FrameSource
	logger   *log.Logger
}

// NewWorkspace creates an empty workspace.
func NewWorkspace(opts WorkspaceOptions) *Workspace {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Media.ID == "" {
		opts.Media = media.Builtin().Default()
	}
	return &Workspace{
		media:  opts.Media,
		frames: opts.Frames,
		logger: opts.Logger,
	}
}

// SetFrameSource wires the geometry provider after construction. The
// workspace and the scheduler reference each other, so one side has to be
// attached late.
func (w *Workspace) SetFrameSource(fs FrameSource) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.frames = fs
}

func (w *Workspace) add(it *item.Item) *item.Item {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.items = append(w.items, it)
	return it.Clone()
}

func (w *Workspace) AddTextItem() *item.Item    { return w.add(item.NewText()) }
func (w *Workspace) AddQRItem() *item.Item      { return w.add(item.NewQR()) }
func (w *Workspace) AddBarcodeItem() *item.Item { return w.add(item.NewBarcode()) }
func (w *Workspace) AddImageItem() *item.Item   { return w.add(item.NewImage()) }
func (w *Workspace) AddIconItem() *item.Item    { return w.add(item.NewIcon()) }

func (w *Workspace) AddShapeItem(kind item.ShapeType) *item.Item {
	return w.add(item.NewShape(kind))
}

// Items returns a copy of the ordered item list.
func (w *Workspace) Items() item.List {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.items.Clone()
}

// Item returns a copy of the item with the given id.
func (w *Workspace) Item(id string) (*item.Item, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	it := w.items.Find(id)
	if it == nil {
		return nil, false
	}
	return it.Clone(), true
}

// Mutate runs fn against the stored item under the workspace lock.
func (w *Workspace) Mutate(id string, fn func(*item.Item)) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	it := w.items.Find(id)
	if it == nil {
		return false
	}
	fn(it)
	return true
}

// Remove deletes an item and drops it from the selection.
func (w *Workspace) Remove(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	idx := w.items.Index(id)
	if idx < 0 {
		return false
	}
	w.items = append(w.items[:idx], w.items[idx+1:]...)
	w.pruneSelectionLocked()
	return true
}

// ReplaceAll swaps the whole item list for a copy of the given one.
func (w *Workspace) ReplaceAll(items item.List) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.items = items.Clone()
	w.pruneSelectionLocked()
}

// Clear empties the item list and the selection.
func (w *Workspace) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.items = nil
	w.selected = nil
}

// SelectedItemIDs returns a copy of the current selection.
func (w *Workspace) SelectedItemIDs() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]string, len(w.selected))
	copy(out, w.selected)
	return out
}

// SetSelectedItemIDs replaces the selection. Unknown ids are kept; they
// are pruned when the items they referenced disappear.
func (w *Workspace) SetSelectedItemIDs(ids []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.selected = make([]string, len(ids))
	copy(w.selected, ids)
}

// pruneSelectionLocked drops selected ids that no longer resolve.
func (w *Workspace) pruneSelectionLocked() {
	if len(w.selected) == 0 {
		return
	}
	kept := w.selected[:0]
	for _, id := range w.selected {
		if w.items.Find(id) != nil {
			kept = append(kept, id)
		}
	}
	w.selected = kept
}

// Media returns the active media profile.
func (w *Workspace) Media() media.Profile {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.media
}

// SetMedia switches the active media profile.
func (w *Workspace) SetMedia(p media.Profile) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.media = p
}

// Snapshot returns a copy of the items plus the active media. It satisfies
// the render scheduler's snapshot contract.
func (w *Workspace) Snapshot() (item.List, media.Profile) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.items.Clone(), w.media
}

// AlignSelectedItems shifts selected items so their rendered bounds line
// up. It needs a measured frame; without one it reports why nothing moved.
func (w *Workspace) AlignSelectedItems(mode AlignMode, reference AlignReference) AlignResult {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.selected) == 0 {
		return AlignResult{Reason: "nothing selected"}
	}
	if w.frames == nil {
		return AlignResult{Reason: "no geometry available"}
	}
	frame, ok := w.frames()
	if !ok {
		return AlignResult{Reason: "no geometry available"}
	}

	// Collect the selected items that have measured bounds.
	type placed struct {
		it     *item.Item
		bounds geom.Rect
	}
	var targets []placed
	for _, id := range w.selected {
		it := w.items.Find(id)
		if it == nil {
			continue
		}
		b, ok := frame.BoundsOf(id)
		if !ok {
			continue
		}
		targets = append(targets, placed{it: it, bounds: b})
	}
	if len(targets) == 0 {
		return AlignResult{Reason: "geometry not ready"}
	}

	var ref geom.Rect
	switch reference {
	case ReferenceCanvas:
		ref = geom.Rect{Width: frame.Canvas.Width, Height: frame.Canvas.Height}
	case ReferenceFirst:
		ref = targets[0].bounds
	default:
		ref = targets[0].bounds
		for _, t := range targets[1:] {
			ref = ref.Union(t.bounds)
		}
	}

	count := 0
	for _, t := range targets {
		var dx, dy float64
		switch mode {
		case AlignLeft:
			dx = ref.X - t.bounds.X
		case AlignCenterX:
			dx = ref.Center().X - t.bounds.Center().X
		case AlignRight:
			dx = ref.MaxX() - t.bounds.MaxX()
		case AlignTop:
			dy = ref.Y - t.bounds.Y
		case AlignMiddle:
			dy = ref.Center().Y - t.bounds.Center().Y
		case AlignBottom:
			dy = ref.MaxY() - t.bounds.MaxY()
		default:
			return AlignResult{Reason: "unknown alignment mode"}
		}
		if math.Abs(dx) < alignEpsilon && math.Abs(dy) < alignEpsilon {
			continue
		}
		t.it.XOffset += dx
		t.it.YOffset += dy
		count++
	}

	if count == 0 {
		return AlignResult{Reason: "already aligned"}
	}
	w.logger.Debug("aligned selection", "mode", mode, "reference", reference, "moved", count)
	return AlignResult{Changed: true, Count: count}
}

// Ensure Workspace implements Editor.
var _ Editor = (*Workspace)(nil)
