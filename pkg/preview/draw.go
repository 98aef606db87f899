package preview

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/code39"
	"github.com/boombuler/barcode/ean"
	"github.com/boombuler/barcode/qr"
	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/labelsmith/labelsmith/pkg/fonts"
	"github.com/labelsmith/labelsmith/pkg/geom"
	"github.com/labelsmith/labelsmith/pkg/httputil"
	"github.com/labelsmith/labelsmith/pkg/item"
	"github.com/labelsmith/labelsmith/pkg/render"
)

const (
	// lineHeightFactor matches the measurer's line box height.
	lineHeightFactor = 1.2

	// captionFontSize fits the caption band under a 1D barcode.
	captionFontSize = 8.0
)

// drawItem paints one item about the centre of its measured bounds.
// Rotation happens here so the per-type functions draw unrotated
// content; rotating about the bounds centre is exact because measured
// bounds preserve the content centre.
func (r *Renderer) drawItem(ctx context.Context, dc *gg.Context, it *item.Item, bounds geom.Rect) {
	c := bounds.Center()
	cx, cy := c.X*r.scale, c.Y*r.scale

	dc.Push()
	defer dc.Pop()
	if it.Rotation != 0 {
		dc.RotateAbout(geom.Radians(it.Rotation), cx, cy)
	}
	dc.SetRGB(0, 0, 0)

	switch it.Type {
	case item.TypeText:
		r.drawText(dc, it, cx, cy)
	case item.TypeQR:
		r.drawQR(dc, it, cx, cy)
	case item.TypeBarcode:
		r.drawBarcode(dc, it, cx, cy)
	case item.TypeShape:
		r.drawShape(dc, it, cx, cy)
	case item.TypeImage:
		r.drawImage(ctx, dc, it, cx, cy)
	case item.TypeIcon:
		r.drawIcon(dc, it, cx, cy)
	}
}

func (r *Renderer) drawText(dc *gg.Context, it *item.Item, cx, cy float64) {
	style := fonts.Style{Family: it.FontFamily, Bold: it.TextBold, Italic: it.TextItalic}
	path := r.resolver.Path(style)
	size := it.FontSize * r.scale
	if path == "" || dc.LoadFontFace(path, size) != nil {
		r.drawMissingText(dc, it, cx, cy)
		return
	}

	lines := strings.Split(it.Text, "\n")
	lineH := lineHeightFactor * size
	top := cy - lineH*float64(len(lines))/2

	var widest float64
	for _, ln := range lines {
		if w, _ := dc.MeasureString(ln); w > widest {
			widest = w
		}
	}

	for i, ln := range lines {
		w, _ := dc.MeasureString(ln)
		x := cx - widest/2
		switch it.TextAlign {
		case item.AlignCenter:
			x = cx - w/2
		case item.AlignRight:
			x = cx + widest/2 - w
		}

		baseline := top + lineH*float64(i) + size
		dc.DrawString(ln, x, baseline)

		if it.TextUnderline && ln != "" {
			dc.SetLineWidth(math.Max(1, size/12))
			uy := baseline + size*0.1
			dc.DrawLine(x, uy, x+w, uy)
			dc.Stroke()
		}
	}
}

// drawMissingText shows where text would sit when no face loads, sized
// by the same estimate the measurer falls back to.
func (r *Renderer) drawMissingText(dc *gg.Context, it *item.Item, cx, cy float64) {
	lines := strings.Split(it.Text, "\n")
	var longest int
	for _, ln := range lines {
		if n := utf8.RuneCountInString(ln); n > longest {
			longest = n
		}
	}
	w := 0.6 * it.FontSize * float64(longest) * r.scale
	h := lineHeightFactor * it.FontSize * float64(len(lines)) * r.scale
	if w < 1 || h < 1 {
		return
	}
	dc.SetRGB(0.85, 0.85, 0.85)
	dc.DrawRectangle(cx-w/2, cy-h/2, w, h)
	dc.Fill()
	dc.SetRGB(0, 0, 0)
}

func (r *Renderer) drawQR(dc *gg.Context, it *item.Item, cx, cy float64) {
	side := it.QRSize() * r.scale
	code, err := qr.Encode(it.Text, qrLevel(it.ErrorCorrection), qr.Auto)
	if err == nil {
		var img barcode.Barcode
		if img, err = barcode.Scale(code, round(side), round(side)); err == nil {
			dc.DrawImageAnchored(img, round(cx), round(cy), 0.5, 0.5)
			return
		}
	}
	r.opts.Logger.Debug("qr not encodable, drawing placeholder", "item", it.ID, "err", err)
	r.drawCrossedBox(dc, cx, cy, side, side)
}

func (r *Renderer) drawBarcode(dc *gg.Context, it *item.Item, cx, cy float64) {
	size := render.ContentSize(it)
	w := size.Width * r.scale
	h := size.Height * r.scale
	barH := it.Height * r.scale

	code, err := encode1D(it.Protocol, it.Text)
	if err == nil {
		var img barcode.Barcode
		if img, err = barcode.Scale(code, round(w), round(barH)); err == nil {
			top := cy - h/2
			dc.DrawImageAnchored(img, round(cx), round(top+barH/2), 0.5, 0.5)
			if it.ShowText {
				r.drawCaption(dc, it.Text, cx, top+barH)
			}
			return
		}
	}
	r.opts.Logger.Debug("barcode not encodable, drawing placeholder",
		"item", it.ID, "protocol", it.Protocol, "err", err)
	r.drawCrossedBox(dc, cx, cy, w, h)
}

func (r *Renderer) drawCaption(dc *gg.Context, text string, cx, top float64) {
	path := r.resolver.Path(fonts.Style{Family: fonts.FamilySans})
	if path == "" || dc.LoadFontFace(path, captionFontSize*r.scale) != nil {
		return
	}
	dc.DrawStringAnchored(text, cx, top+render.CaptionHeight*r.scale/2, 0.5, 0.4)
}

func (r *Renderer) drawShape(dc *gg.Context, it *item.Item, cx, cy float64) {
	lw := it.LineWidth
	if lw <= 0 {
		lw = item.DefaultLineWidth
	}
	dc.SetLineWidth(lw * r.scale)

	w := it.Width * r.scale
	h := it.Height * r.scale

	switch it.ShapeType {
	case item.ShapeLine:
		if it.Height <= 0 {
			dc.DrawLine(cx-w/2, cy, cx+w/2, cy)
		} else {
			// A line with a height runs its box's diagonal.
			dc.DrawLine(cx-w/2, cy-h/2, cx+w/2, cy+h/2)
		}
		dc.Stroke()
	case item.ShapeOval:
		dc.DrawEllipse(cx, cy, w/2, h/2)
		paint(dc, it.Filled)
	case item.ShapeRoundRect:
		dc.DrawRoundedRectangle(cx-w/2, cy-h/2, w, h, math.Min(w, h)*0.2)
		paint(dc, it.Filled)
	default:
		dc.DrawRectangle(cx-w/2, cy-h/2, w, h)
		paint(dc, it.Filled)
	}
}

func paint(dc *gg.Context, filled bool) {
	if filled {
		dc.Fill()
	} else {
		dc.Stroke()
	}
}

func (r *Renderer) drawImage(ctx context.Context, dc *gg.Context, it *item.Item, cx, cy float64) {
	w := it.Width * r.scale
	h := it.Height * r.scale

	img, err := r.loadImage(ctx, it.Source)
	if err != nil {
		r.opts.Logger.Debug("image not loadable, drawing placeholder",
			"item", it.ID, "source", it.Source, "err", err)
		r.drawCrossedBox(dc, cx, cy, w, h)
		return
	}
	if round(w) < 1 || round(h) < 1 {
		return
	}
	fitted := imaging.Fit(img, round(w), round(h), imaging.Lanczos)
	dc.DrawImageAnchored(fitted, round(cx), round(cy), 0.5, 0.5)
}

func (r *Renderer) loadImage(ctx context.Context, source string) (image.Image, error) {
	if source == "" {
		return nil, fmt.Errorf("empty image source")
	}
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		data, err := httputil.FetchBytes(ctx, r.opts.HTTPClient, source)
		if err != nil {
			return nil, err
		}
		return imaging.Decode(bytes.NewReader(data))
	}
	return imaging.Open(source)
}

// drawIcon paints the small built-in glyph set; unknown names get a
// rounded box with the icon's initial.
func (r *Renderer) drawIcon(dc *gg.Context, it *item.Item, cx, cy float64) {
	side := it.Size * r.scale
	if side < 1 {
		return
	}
	half := side / 2

	switch it.Icon {
	case "star":
		drawStar(dc, cx, cy, half)
	case "circle":
		dc.DrawCircle(cx, cy, half*0.9)
		dc.Fill()
	case "square":
		dc.DrawRectangle(cx-half*0.8, cy-half*0.8, side*0.8, side*0.8)
		dc.Fill()
	case "heart":
		drawHeart(dc, cx, cy, half)
	default:
		dc.SetLineWidth(math.Max(1, side/16))
		dc.DrawRoundedRectangle(cx-half, cy-half, side, side, side*0.2)
		dc.Stroke()
		initial := "?"
		if runes := []rune(it.Icon); len(runes) > 0 {
			initial = strings.ToUpper(string(runes[0]))
		}
		path := r.resolver.Path(fonts.Style{Family: fonts.FamilySans, Bold: true})
		if path != "" && dc.LoadFontFace(path, side*0.5) == nil {
			dc.DrawStringAnchored(initial, cx, cy, 0.5, 0.35)
		}
	}
}

func drawStar(dc *gg.Context, cx, cy, radius float64) {
	const points = 5
	inner := radius * 0.45
	for i := 0; i < points*2; i++ {
		r := radius
		if i%2 == 1 {
			r = inner
		}
		a := float64(i)*math.Pi/points - math.Pi/2
		x := cx + r*math.Cos(a)
		y := cy + r*math.Sin(a)
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	dc.ClosePath()
	dc.Fill()
}

func drawHeart(dc *gg.Context, cx, cy, half float64) {
	w := half * 2
	dc.MoveTo(cx, cy+half*0.8)
	dc.CubicTo(cx-w*0.55, cy+half*0.25, cx-w*0.55, cy-half*0.65, cx, cy-half*0.2)
	dc.CubicTo(cx+w*0.55, cy-half*0.65, cx+w*0.55, cy+half*0.25, cx, cy+half*0.8)
	dc.ClosePath()
	dc.Fill()
}

// drawCrossedBox is the shared placeholder: a light box with an X.
func (r *Renderer) drawCrossedBox(dc *gg.Context, cx, cy, w, h float64) {
	if w < 1 || h < 1 {
		return
	}
	x := cx - w/2
	y := cy - h/2

	dc.SetRGB(0.9, 0.9, 0.9)
	dc.DrawRectangle(x, y, w, h)
	dc.Fill()

	dc.SetRGB(0.5, 0.5, 0.5)
	dc.SetLineWidth(math.Max(1, r.scale))
	dc.DrawLine(x, y, x+w, y+h)
	dc.DrawLine(x+w, y, x, y+h)
	dc.Stroke()
	dc.SetRGB(0, 0, 0)
}

func encode1D(protocol item.Protocol, text string) (barcode.Barcode, error) {
	switch protocol {
	case item.ProtocolEAN13:
		return ean.Encode(text)
	case item.ProtocolCode39:
		return code39.Encode(text, false, false)
	default:
		return code128.Encode(text)
	}
}

func qrLevel(s string) qr.ErrorCorrectionLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "L":
		return qr.L
	case "Q":
		return qr.Q
	case "H":
		return qr.H
	default:
		return qr.M
	}
}

func round(v float64) int {
	return int(math.Round(v))
}
