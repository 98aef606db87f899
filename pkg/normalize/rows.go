package normalize

import (
	"math"
	"sort"
	"strings"

	"github.com/labelsmith/labelsmith/pkg/editor"
	"github.com/labelsmith/labelsmith/pkg/geom"
	"github.com/labelsmith/labelsmith/pkg/item"
	"github.com/labelsmith/labelsmith/pkg/render"
)

// Layout tuning in device units. Validated against the pattern fixtures;
// treat as defaults, not contracts.
const (
	// minRowGap is the smallest vertical gap between stacked rows.
	minRowGap = 3.0

	// rowGapFactor scales a row's font size into its following gap.
	rowGapFactor = 0.3

	// tightRowGapFactor is the compressed gap used before fonts shrink.
	tightRowGapFactor = 0.15

	// columnGap separates a text column from the code to its right.
	columnGap = 6.0

	// estimatedLineFactor approximates a line box from a font size when
	// an item has no measured bounds yet.
	estimatedLineFactor = 1.2

	// fitTolerance absorbs rounding when comparing measured extents.
	fitTolerance = 0.5
)

// collectText joins the content of all text items, in item order.
func collectText(items item.List) string {
	var parts []string
	for _, it := range items.OfType(item.TypeText) {
		if it.Text != "" {
			parts = append(parts, it.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// rowGapFor returns the gap that follows a row of the given font size.
func rowGapFor(fontSize float64, tight bool) float64 {
	factor := rowGapFactor
	if tight {
		factor = tightRowGapFactor
	}
	gap := factor * fontSize
	if gap < minRowGap {
		gap = minRowGap
	}
	return gap
}

// measuredHeight returns an item's measured height, or an estimate from
// its font size when the frame has no bounds for it yet.
func measuredHeight(frame render.Frame, it *item.Item) float64 {
	if b, ok := frame.BoundsOf(it.ID); ok && b.Height > 0 {
		return b.Height
	}
	return estimatedLineFactor * it.FontSize
}

// sortRowsByTop orders text items by their measured top edge, top first.
// Items without bounds keep their relative order at the end.
func sortRowsByTop(rows item.List, frame render.Frame) {
	top := func(it *item.Item) (float64, bool) {
		b, ok := frame.BoundsOf(it.ID)
		return b.Y, ok
	}
	sort.SliceStable(rows, func(i, j int) bool {
		yi, oki := top(rows[i])
		yj, okj := top(rows[j])
		if oki != okj {
			return oki
		}
		if !oki {
			return false
		}
		return yi < yj
	})
}

// columnMaxX returns the right edge of the widest row in the set.
func columnMaxX(frame render.Frame, ids []string) float64 {
	var max float64
	for _, id := range ids {
		if b, ok := frame.BoundsOf(id); ok && b.MaxX() > max {
			max = b.MaxX()
		}
	}
	return max
}

// rowsOrderedWithGaps verifies stacked rows sit strictly top to bottom
// with at least minGap between consecutive bounds.
func rowsOrderedWithGaps(frame render.Frame, ids []string, minGap float64) bool {
	var prev geom.Rect
	havePrev := false
	for _, id := range ids {
		b, ok := frame.BoundsOf(id)
		if !ok {
			return false
		}
		if havePrev && b.Y-prev.MaxY() < minGap-fitTolerance {
			return false
		}
		prev = b
		havePrev = true
	}
	return true
}

// rectContained reports whether a rect lies fully inside the canvas.
func rectContained(b geom.Rect, canvas geom.Size) bool {
	return b.X >= -fitTolerance && b.Y >= -fitTolerance &&
		b.MaxX() <= canvas.Width+fitTolerance && b.MaxY() <= canvas.Height+fitTolerance
}

// scaleFonts multiplies the font size of the given text items, clamped at
// floor. Reports whether any font actually shrank.
func scaleFonts(ed editor.Editor, ids []string, factor, floor float64) bool {
	changed := false
	for _, id := range ids {
		ed.Mutate(id, func(it *item.Item) {
			if it.Type != item.TypeText {
				return
			}
			next := math.Max(floor, it.FontSize*factor)
			if next < it.FontSize {
				it.FontSize = next
				changed = true
			}
		})
	}
	return changed
}

// absoluteTextRows returns the text items pinned in draw space, in list
// order.
func absoluteTextRows(items item.List) item.List {
	var rows item.List
	for _, it := range items.OfType(item.TypeText) {
		if it.PositionMode == item.PositionAbsolute {
			rows = append(rows, it)
		}
	}
	return rows
}

// rowsContained reports whether every row has bounds fully on the canvas.
func rowsContained(frame render.Frame, ids []string, canvas geom.Size) bool {
	for _, id := range ids {
		b, ok := frame.BoundsOf(id)
		if !ok || !rectContained(b, canvas) {
			return false
		}
	}
	return true
}

// placeQRRight pins a qr against the right margin, clear of the text
// column, shrinking it toward the media floor when the column leaves no
// room. Reports whether the qr ended up clear and fully on the canvas.
func placeQRRight(st *State, qrID string, rowIDs []string) bool {
	canvas := st.Media.Canvas()
	margin := st.Media.MarginDots
	minQR := st.Media.MinQRSize()
	textMaxX := columnMaxX(st.Frame, rowIDs)

	var size float64
	st.Editor.Mutate(qrID, func(it *item.Item) { size = it.QRSize() })

	x := canvas.Width - margin - size
	if textMaxX+columnGap > x {
		avail := canvas.Width - margin - textMaxX - columnGap
		size = math.Max(minQR, math.Min(size, avail))
		x = canvas.Width - margin - size
	}
	y := (canvas.Height - size) / 2
	if y < 0 {
		y = 0
	}

	st.Editor.Mutate(qrID, func(it *item.Item) {
		it.PositionMode = item.PositionAbsolute
		it.SetQRSize(size)
		it.XOffset = x
		it.YOffset = y
	})

	return x >= textMaxX+columnGap-fitTolerance &&
		rectContained(geom.Rect{X: x, Y: y, Width: size, Height: size}, canvas)
}
