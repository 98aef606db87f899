package normalize

import (
	"context"
	"math"
	"strings"
	"unicode"

	"github.com/labelsmith/labelsmith/pkg/geom"
	"github.com/labelsmith/labelsmith/pkg/item"
	"github.com/labelsmith/labelsmith/pkg/render"
)

const (
	// headerSplit and midSplit anchor the two horizontal dividers, as
	// fractions of frame height.
	headerSplit = 0.25
	midSplit    = 0.6

	// columnSplit anchors the vertical divider, as a fraction of frame
	// width. It only spans the region below the mid divider.
	columnSplit = 0.55

	// shapeTolerance is the slack, in device units, when deciding whether
	// an existing shape already is one of the structural shapes.
	shapeTolerance = 2.0

	// bigLetterFactor marks the photo-style composition: a single glyph
	// at least this share of canvas height next to rotated side text.
	bigLetterFactor = 0.5
)

// barcodeFormPass completes the boxed code-sheet layout: repeated code
// rows, one barcode, and a structural frame with dividers. It adds the
// shapes the proposer left out, never duplicating ones that already sit
// where a structural shape belongs.
type barcodeFormPass struct{}

func (p *barcodeFormPass) Name() string { return "boxed-barcode-form" }

// Match requires at least two code-like rows and exactly one barcode,
// with no qr or pictorial items. The rotated-side-text plus big-letter
// arrangement is a deliberate composition and is left alone.
func (p *barcodeFormPass) Match(items item.List, frame render.Frame) bool {
	if items.Count(item.TypeBarcode) != 1 {
		return false
	}
	if items.Count(item.TypeQR) != 0 || items.Count(item.TypeImage) != 0 || items.Count(item.TypeIcon) != 0 {
		return false
	}
	codeRows := 0
	for _, it := range items.OfType(item.TypeText) {
		if codeLikeRow(it.Text) {
			codeRows++
		}
	}
	if codeRows < 2 {
		return false
	}
	return !photoComposition(items, frame.Canvas.Height)
}

// Apply ensures the frame rect and the three dividers exist, raises the
// barcode to the media height floor, and strips underlines from code rows
// since the dividers carry the structure.
func (p *barcodeFormPass) Apply(ctx context.Context, st *State) (Outcome, error) {
	out := Outcome{}

	canvas := st.Media.Canvas()
	margin := st.Media.MarginDots
	frameRect := geom.Rect{
		X:      margin,
		Y:      margin,
		Width:  canvas.Width - 2*margin,
		Height: canvas.Height - 2*margin,
	}

	wanted := structuralShapes(frameRect)
	shapes := st.Editor.Items().OfType(item.TypeShape)
	for _, want := range wanted {
		if findEquivalentShape(shapes, st.Frame, canvas, want) != nil {
			continue
		}
		s := st.Editor.AddShapeItem(want.kind)
		st.Editor.Mutate(s.ID, func(it *item.Item) { want.place(it, canvas) })
		out.Mutated = true
	}

	for _, it := range st.Editor.Items().OfType(item.TypeText) {
		if it.TextUnderline && codeLikeRow(it.Text) {
			st.Editor.Mutate(it.ID, func(row *item.Item) { row.TextUnderline = false })
			out.Mutated = true
		}
	}

	minHeight := st.Media.MinBarcodeHeight()
	for _, bc := range st.Editor.Items().OfType(item.TypeBarcode) {
		if bc.Height < minHeight {
			st.Editor.Mutate(bc.ID, func(it *item.Item) { it.Height = minHeight })
			out.Mutated = true
		}
	}

	frame, err := st.Refresh(ctx)
	if err != nil {
		return out, err
	}
	st.Frame = frame

	shapes = st.Editor.Items().OfType(item.TypeShape)
	out.Resolved = true
	for _, want := range wanted {
		if findEquivalentShape(shapes, frame, canvas, want) == nil {
			out.Resolved = false
			out.Warnings = append(out.Warnings, WarningOutOfHeadroom)
			break
		}
	}
	return out, nil
}

// structShape is one wanted structural shape, described by its draw-space
// extent. Lines carry their pre-rotation length separately because the
// extent of a vertical line is the rotated box.
type structShape struct {
	kind     item.ShapeType
	bounds   geom.Rect
	rotation float64
	length   float64
}

// structuralShapes returns the canonical sheet structure for a frame
// rect: the frame itself, two horizontal dividers, and a vertical divider
// below the mid split.
func structuralShapes(frame geom.Rect) []structShape {
	lw := item.DefaultLineWidth
	headerY := frame.Y + headerSplit*frame.Height
	midY := frame.Y + midSplit*frame.Height
	colX := frame.X + columnSplit*frame.Width

	return []structShape{
		{kind: item.ShapeRect, bounds: frame},
		{
			kind:   item.ShapeLine,
			length: frame.Width,
			bounds: geom.Rect{X: frame.X, Y: headerY - lw/2, Width: frame.Width, Height: lw},
		},
		{
			kind:   item.ShapeLine,
			length: frame.Width,
			bounds: geom.Rect{X: frame.X, Y: midY - lw/2, Width: frame.Width, Height: lw},
		},
		{
			kind:     item.ShapeLine,
			rotation: 90,
			length:   frame.MaxY() - midY,
			bounds:   geom.Rect{X: colX - lw/2, Y: midY, Width: lw, Height: frame.MaxY() - midY},
		},
	}
}

// place writes the shape fields that make the item's measured bounds land
// on the wanted extent. Shape offsets run canvas centre to shape centre,
// and rotation preserves the centre, so anchoring the centre of the
// wanted bounds is exact for both orientations.
func (s structShape) place(it *item.Item, canvas geom.Size) {
	it.PositionMode = item.PositionAbsolute
	it.Rotation = s.rotation
	it.LineWidth = item.DefaultLineWidth
	it.Filled = false
	if s.kind == item.ShapeLine {
		it.Width = s.length
		it.Height = 0
	} else {
		it.Width = s.bounds.Width
		it.Height = s.bounds.Height
	}
	off := geom.TopLeftToCenterOffset(canvas, s.bounds.Width, s.bounds.Height, s.bounds.X, s.bounds.Y)
	it.XOffset = off.X
	it.YOffset = off.Y
}

// findEquivalentShape returns an existing shape whose bounds already sit
// on the wanted extent, within tolerance. A roundrect counts as a frame
// rect. Shapes the frame has not measured yet are projected from their
// own fields.
func findEquivalentShape(shapes item.List, frame render.Frame, canvas geom.Size, want structShape) *item.Item {
	kindMatches := func(st item.ShapeType) bool {
		if want.kind == item.ShapeRect {
			return st == item.ShapeRect || st == item.ShapeRoundRect
		}
		return st == want.kind
	}
	for _, it := range shapes {
		if !kindMatches(it.ShapeType) {
			continue
		}
		b, ok := frame.BoundsOf(it.ID)
		if !ok {
			b = projectedShapeBounds(it, canvas)
		}
		if rectsClose(b, want.bounds, shapeTolerance) {
			return it
		}
	}
	return nil
}

// projectedShapeBounds computes the bounds a shape would measure to,
// for shapes the current frame does not cover yet.
func projectedShapeBounds(it *item.Item, canvas geom.Size) geom.Rect {
	w, h := it.Width, it.Height
	if it.ShapeType == item.ShapeLine && h <= 0 {
		h = it.LineWidth
	}
	tl := geom.CenterOffsetToTopLeft(canvas, w, h, it.XOffset, it.YOffset)
	return geom.RotatedBounds(geom.Rect{X: tl.X, Y: tl.Y, Width: w, Height: h}, it.Rotation)
}

func rectsClose(a, b geom.Rect, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol &&
		math.Abs(a.Width-b.Width) <= tol && math.Abs(a.Height-b.Height) <= tol
}

// codeLikeRow reports whether a row reads like an identifier: one token,
// at least one digit, no lowercase.
func codeLikeRow(text string) bool {
	t := strings.TrimSpace(text)
	if t == "" || len([]rune(t)) > 24 {
		return false
	}
	hasDigit := false
	for _, r := range t {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLower(r) || unicode.IsSpace(r):
			return false
		case unicode.IsUpper(r) || r == '-' || r == '_' || r == '.' || r == '/':
		default:
			return false
		}
	}
	return hasDigit
}

// photoComposition detects rotated side text next to a single oversized
// letter. That pairing is a deliberate design, not a sloppy code sheet.
func photoComposition(items item.List, canvasHeight float64) bool {
	if canvasHeight <= 0 {
		return false
	}
	sideText, bigLetter := false, false
	for _, it := range items.OfType(item.TypeText) {
		a := geom.NormalizeAngle(it.Rotation)
		if math.Abs(a-90) < 1 || math.Abs(a-270) < 1 {
			sideText = true
		}
		if len([]rune(strings.TrimSpace(it.Text))) == 1 && it.FontSize >= bigLetterFactor*canvasHeight {
			bigLetter = true
		}
	}
	return sideText && bigLetter
}
