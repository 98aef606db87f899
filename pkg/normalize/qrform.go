package normalize

import (
	"context"
	"strings"

	"github.com/labelsmith/labelsmith/pkg/item"
	"github.com/labelsmith/labelsmith/pkg/media"
	"github.com/labelsmith/labelsmith/pkg/render"
)

// qrFormFitAttempts bounds the stack/measure cycles for the form rows.
const qrFormFitAttempts = 10

// qrFormPass restacks heading/value rows into a clean left column with a
// single qr pinned clear of it on the right. Unlike the inventory card it
// keeps the proposer's rows verbatim; only placement and sizing change.
type qrFormPass struct{}

func (p *qrFormPass) Name() string { return "qr-form" }

// Match requires exactly one qr and no barcode, four to eight absolute
// text rows with at least half of them left of the qr's horizontal
// centre, and at least two heading-like rows ending in a colon.
func (p *qrFormPass) Match(items item.List, frame render.Frame) bool {
	if items.Count(item.TypeQR) != 1 || items.Count(item.TypeBarcode) != 0 {
		return false
	}
	rows := absoluteTextRows(items)
	if len(rows) < 4 || len(rows) > 8 {
		return false
	}

	qr := items.OfType(item.TypeQR)[0]
	qrCentre := qr.XOffset + qr.QRSize()/2
	if b, ok := frame.BoundsOf(qr.ID); ok {
		qrCentre = b.Center().X
	}

	left, headings := 0, 0
	for _, r := range rows {
		x := r.XOffset
		if b, ok := frame.BoundsOf(r.ID); ok {
			x = b.X
		}
		if x < qrCentre {
			left++
		}
		if strings.HasSuffix(strings.TrimSpace(r.Text), ":") {
			headings++
		}
	}
	return left*2 >= len(rows) && headings >= 2
}

// Apply stacks the rows top to bottom in measured order, compressing gaps
// and then shrinking fonts until the stack fits, and finally moves the qr
// out of the column's way.
func (p *qrFormPass) Apply(ctx context.Context, st *State) (Outcome, error) {
	out := Outcome{}

	items := st.Editor.Items()
	rows := absoluteTextRows(items)
	sortRowsByTop(rows, st.Frame)
	rowIDs := rows.IDs()
	qrID := items.OfType(item.TypeQR)[0].ID

	canvas := st.Media.Canvas()
	margin := st.Media.MarginDots

	tight := false
	rowsFit := false
	for attempt := 0; attempt < qrFormFitAttempts; attempt++ {
		p.restack(st, rowIDs, tight, margin)
		out.Mutated = true

		frame, err := st.Refresh(ctx)
		if err != nil {
			return out, err
		}
		st.Frame = frame

		if rowsOrderedWithGaps(frame, rowIDs, minRowGap) && rowsContained(frame, rowIDs, canvas) {
			rowsFit = true
			break
		}
		if !tight {
			tight = true
			continue
		}
		if !scaleFonts(st.Editor, rowIDs, 0.9, media.FontSizeFloor) {
			break
		}
		// Fonts changed; measure again so the next stack uses the new
		// line boxes.
		frame, err = st.Refresh(ctx)
		if err != nil {
			return out, err
		}
		st.Frame = frame
	}

	qrOK := false
	for attempt := 0; attempt < 3; attempt++ {
		if placeQRRight(st, qrID, rowIDs) {
			qrOK = true
			break
		}
		// Not even the floor-size qr fits beside the column; narrow the
		// column itself.
		if !scaleFonts(st.Editor, rowIDs, 0.85, media.FontSizeFloor) {
			break
		}
		frame, err := st.Refresh(ctx)
		if err != nil {
			return out, err
		}
		st.Frame = frame
		p.restack(st, rowIDs, tight, margin)
		frame, err = st.Refresh(ctx)
		if err != nil {
			return out, err
		}
		st.Frame = frame
	}

	if !rowsFit || !qrOK {
		out.Warnings = append(out.Warnings, WarningOutOfHeadroom)
	}
	out.Resolved = rowsFit && qrOK
	return out, nil
}

// restack assigns stacked y offsets from the top margin down, preserving
// the given row order. Rows keep their x unless they start off-canvas.
func (p *qrFormPass) restack(st *State, ids []string, tight bool, margin float64) {
	y := margin
	for _, id := range ids {
		it, ok := st.Editor.Item(id)
		if !ok {
			continue
		}
		h := measuredHeight(st.Frame, it)
		st.Editor.Mutate(id, func(row *item.Item) {
			row.PositionMode = item.PositionAbsolute
			if row.XOffset < margin {
				row.XOffset = margin
			}
			row.YOffset = y
		})
		y += h + rowGapFor(it.FontSize, tight)
	}
}
