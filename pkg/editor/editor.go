// Package editor owns the mutable layout state an action batch edits.
//
// A Workspace holds the ordered item list, the current selection, and the
// active media profile. The action bridge drives it through the Editor
// interface; the render scheduler reads consistent snapshots from it. All
// reads return copies, so the only way to change stored state is through
// the mutating methods.
package editor

import (
	"fmt"

	"github.com/labelsmith/labelsmith/pkg/item"
	"github.com/labelsmith/labelsmith/pkg/media"
)

// AlignMode selects the edge or axis selected items are aligned on.
type AlignMode string

const (
	AlignLeft    AlignMode = "left"
	AlignCenterX AlignMode = "center-x"
	AlignRight   AlignMode = "right"
	AlignTop     AlignMode = "top"
	AlignMiddle  AlignMode = "middle"
	AlignBottom  AlignMode = "bottom"
)

// ParseAlignMode maps the mode names accepted in action payloads onto an
// AlignMode. "center" means the horizontal axis; "middle" the vertical.
func ParseAlignMode(s string) (AlignMode, error) {
	switch s {
	case "left":
		return AlignLeft, nil
	case "center", "centre", "center-x", "center_x", "centerX":
		return AlignCenterX, nil
	case "right":
		return AlignRight, nil
	case "top":
		return AlignTop, nil
	case "middle", "center-y", "center_y", "centerY":
		return AlignMiddle, nil
	case "bottom":
		return AlignBottom, nil
	}
	return "", fmt.Errorf("unknown alignment mode %q", s)
}

// AlignReference selects the frame items are aligned against.
type AlignReference string

const (
	// ReferenceSelection aligns against the union of the selected items'
	// bounds. This is the default.
	ReferenceSelection AlignReference = "selection"

	// ReferenceCanvas aligns against the media canvas.
	ReferenceCanvas AlignReference = "canvas"

	// ReferenceFirst aligns against the first selected item.
	ReferenceFirst AlignReference = "first"
)

// ParseAlignReference maps reference names from action payloads. The empty
// string selects the default.
func ParseAlignReference(s string) (AlignReference, error) {
	switch s {
	case "", "selection", "selected":
		return ReferenceSelection, nil
	case "canvas", "label", "page":
		return ReferenceCanvas, nil
	case "first":
		return ReferenceFirst, nil
	}
	return "", fmt.Errorf("unknown alignment reference %q", s)
}

// AlignResult reports what an alignment operation did.
type AlignResult struct {
	Changed bool   `json:"changed"`
	Count   int    `json:"count"`
	Reason  string `json:"reason,omitempty"`
}

// Editor is the layout-editing surface the action bridge drives.
//
// Item and Items return copies of the stored items; changes to them do not
// take effect. Mutations go through the Add methods, Mutate, Remove,
// ReplaceAll, and Clear.
type Editor interface {
	AddTextItem() *item.Item
	AddQRItem() *item.Item
	AddBarcodeItem() *item.Item
	AddShapeItem(kind item.ShapeType) *item.Item
	AddImageItem() *item.Item
	AddIconItem() *item.Item

	// Items returns a copy of the ordered item list.
	Items() item.List

	// Item returns a copy of the item with the given id.
	Item(id string) (*item.Item, bool)

	// Mutate runs fn against the stored item with the given id and
	// reports whether the id existed.
	Mutate(id string, fn func(*item.Item)) bool

	// Remove deletes an item and drops it from the selection.
	Remove(id string) bool

	// ReplaceAll swaps the whole item list. The selection keeps only ids
	// that still exist.
	ReplaceAll(items item.List)

	// Clear empties the item list and the selection.
	Clear()

	SelectedItemIDs() []string
	SetSelectedItemIDs(ids []string)

	// AlignSelectedItems shifts the selected items' offsets so their
	// rendered bounds line up on the given edge or axis.
	AlignSelectedItems(mode AlignMode, reference AlignReference) AlignResult

	// Media returns the active media profile.
	Media() media.Profile

	// SetMedia switches the active media profile.
	SetMedia(p media.Profile)
}
