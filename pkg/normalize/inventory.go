package normalize

import (
	"context"
	"math"
	"strings"

	"github.com/labelsmith/labelsmith/pkg/geom"
	"github.com/labelsmith/labelsmith/pkg/item"
	"github.com/labelsmith/labelsmith/pkg/media"
	"github.com/labelsmith/labelsmith/pkg/render"
)

// inventoryFitAttempts bounds the measure/shrink cycles for the card grid.
const inventoryFitAttempts = 6

// rowGlyphFactor is the share of a measured line box the glyphs occupy.
// Line boxes include leading, so adjacent rows may share it without the
// glyphs colliding.
const rowGlyphFactor = 0.84

// inventoryRowFractions anchor the six card rows vertically, as fractions
// of canvas height.
var inventoryRowFractions = [6]float64{0.02, 0.185, 0.35, 0.515, 0.68, 0.845}

// inventoryLabels are the three field labels, in card order.
var inventoryLabels = [3]string{"Artikelname:", "Artikelnummer:", "Lagerplatz:"}

// inventoryPass rewrites labeled inventory text plus a qr into the
// canonical six-row card with the qr pinned on the right.
type inventoryPass struct{}

func (p *inventoryPass) Name() string { return "inventory-card" }

// Match requires at least one text and one qr item and all three labels
// somewhere in the combined text, case-insensitive.
func (p *inventoryPass) Match(items item.List, _ render.Frame) bool {
	if items.Count(item.TypeText) < 1 || items.Count(item.TypeQR) < 1 {
		return false
	}
	text := strings.ToLower(collectText(items))
	for _, label := range inventoryLabels {
		if !strings.Contains(text, strings.ToLower(label)) {
			return false
		}
	}
	return true
}

// inventoryFields holds the extracted field values.
type inventoryFields struct {
	Name     string
	Number   string
	Location string
}

// parseInventoryFields extracts the labeled values. A value sits either on
// the label's own line after the colon or on the next non-label line.
func parseInventoryFields(text string) inventoryFields {
	lines := strings.Split(text, "\n")

	value := func(label string) string {
		needle := strings.ToLower(label)
		for i, line := range lines {
			idx := strings.Index(strings.ToLower(line), needle)
			if idx < 0 {
				continue
			}
			if rest := strings.TrimSpace(line[idx+len(needle):]); rest != "" {
				return rest
			}
			for _, next := range lines[i+1:] {
				next = strings.TrimSpace(next)
				if next == "" {
					continue
				}
				if isInventoryLabelLine(next) {
					break
				}
				return next
			}
			return ""
		}
		return ""
	}

	return inventoryFields{
		Name:     value(inventoryLabels[0]),
		Number:   value(inventoryLabels[1]),
		Location: value(inventoryLabels[2]),
	}
}

func isInventoryLabelLine(line string) bool {
	low := strings.ToLower(line)
	for _, label := range inventoryLabels {
		if strings.Contains(low, strings.ToLower(label)) {
			return true
		}
	}
	return false
}

// buildInventoryRows creates the six canonical card rows: label and value
// per field, all bold, the name row underlined.
func buildInventoryRows(fields inventoryFields, headingSize, valueSize float64) item.List {
	values := [3]string{fields.Name, fields.Number, fields.Location}
	rows := make(item.List, 0, 6)
	for i, label := range inventoryLabels {
		h := item.NewText()
		h.Text = label
		h.FontSize = headingSize
		h.TextBold = true

		v := item.NewText()
		v.Text = values[i]
		v.FontSize = valueSize
		v.TextBold = true

		if i == 0 {
			h.TextUnderline = true
			v.TextUnderline = true
		}
		rows = append(rows, h, v)
	}
	return rows
}

// Apply replaces the whole item set with the canonical card, then fits the
// rows into the fraction grid and pins the qr on the right.
func (p *inventoryPass) Apply(ctx context.Context, st *State) (Outcome, error) {
	out := Outcome{}

	items := st.Editor.Items()
	fields := parseInventoryFields(collectText(items))

	qrData, ecc := "", ""
	if qrs := items.OfType(item.TypeQR); len(qrs) > 0 {
		qrData = qrs[0].Text
		ecc = qrs[0].ErrorCorrection
	}
	if qrData == "" {
		// The article number is the natural scan target.
		qrData = fields.Number
	}

	canvas := st.Media.Canvas()
	margin := st.Media.MarginDots
	maxQR := st.Media.MaxQRSize()
	minFont := st.Media.MinFontSize()

	headingSize := math.Max(minFont, math.Round(0.19*maxQR))
	valueSize := math.Max(minFont, math.Round(0.24*maxQR))

	rows := buildInventoryRows(fields, headingSize, valueSize)
	for i, r := range rows {
		r.PositionMode = item.PositionAbsolute
		r.XOffset = margin
		r.YOffset = math.Round(canvas.Height * inventoryRowFractions[i])
	}

	qr := item.NewQR()
	qr.Text = qrData
	if ecc != "" {
		qr.ErrorCorrection = ecc
	}
	qr.PositionMode = item.PositionAbsolute
	qr.SetQRSize(maxQR)

	next := make(item.List, 0, len(rows)+1)
	next = append(next, rows...)
	next = append(next, qr)
	st.Editor.ReplaceAll(next)
	out.Mutated = true

	rowIDs := rows.IDs()

	// Fit the rows into the fixed grid, shrinking fonts toward the hard
	// floor when the grid is tighter than the line boxes.
	rowsFit := false
	for attempt := 0; attempt < inventoryFitAttempts; attempt++ {
		frame, err := st.Refresh(ctx)
		if err != nil {
			return out, err
		}
		st.Frame = frame

		if inventoryRowsFit(frame, rowIDs, canvas.Height) {
			rowsFit = true
			break
		}
		if !scaleFonts(st.Editor, rowIDs, 0.85, media.FontSizeFloor) {
			break
		}
	}
	if !rowsFit {
		out.Warnings = append(out.Warnings, WarningOutOfHeadroom)
	}

	qrOK := placeQRRight(st, qr.ID, rowIDs)
	if !qrOK && rowsFit {
		out.Warnings = append(out.Warnings, WarningOutOfHeadroom)
	}

	out.Resolved = rowsFit && qrOK
	return out, nil
}

// inventoryRowsFit checks the grid holds the rows: each row's glyph box
// ends above the next anchor and the last row fits the canvas.
func inventoryRowsFit(frame render.Frame, ids []string, height float64) bool {
	var prev geom.Rect
	have := false
	for _, id := range ids {
		b, ok := frame.BoundsOf(id)
		if !ok {
			return false
		}
		if have && prev.Y+prev.Height*rowGlyphFactor > b.Y+fitTolerance {
			return false
		}
		prev = b
		have = true
	}
	return prev.Y+prev.Height*rowGlyphFactor <= height+fitTolerance
}

