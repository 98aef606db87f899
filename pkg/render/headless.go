package render

import (
	"context"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/fogleman/gg"

	"github.com/labelsmith/labelsmith/pkg/cache"
	"github.com/labelsmith/labelsmith/pkg/fonts"
	"github.com/labelsmith/labelsmith/pkg/geom"
	"github.com/labelsmith/labelsmith/pkg/item"
	"github.com/labelsmith/labelsmith/pkg/media"
)

// Layout constants in device units.
const (
	// flowGap separates consecutive flow items along the feed axis.
	flowGap = 4.0

	// lineHeightFactor converts a font size into a line box height.
	lineHeightFactor = 1.2

	// estimateWidthFactor approximates per-rune advance when no font face
	// is available.
	estimateWidthFactor = 0.6
)

// CaptionHeight is the human-readable line under a 1D barcode, counted
// into the barcode's box when ShowText is set.
const CaptionHeight = 10.0

// HeadlessOptions configures a Headless measurer. The zero value measures
// with discovered system fonts and no cache.
type HeadlessOptions struct {
	// FontPath forces a specific TTF file for all text styles.
	FontPath string

	// EstimateOnly skips font loading entirely and uses the deterministic
	// size estimate. Useful for reproducible tests and font-less hosts.
	EstimateOnly bool

	// Cache fronts text and frame measurements. Nil disables caching.
	Cache cache.Cache

	// Keyer generates cache keys. Defaults to the standard scheme.
	Keyer cache.Keyer

	Logger *log.Logger
}

// Headless measures layouts without a display, using real font metrics
// when a usable face exists and a deterministic estimate otherwise.
type Headless struct {
	opts     HeadlessOptions
	resolver *fonts.Resolver
}

// NewHeadless creates a headless measurer.
func NewHeadless(opts HeadlessOptions) *Headless {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Keyer == nil {
		opts.Keyer = cache.NewDefaultKeyer()
	}
	resolver := fonts.NewResolver()
	if opts.FontPath != "" {
		resolver = fonts.NewFixedResolver(opts.FontPath)
	}
	return &Headless{
		opts:     opts,
		resolver: resolver,
	}
}

// Measure implements Measurer. The canvas extent is fixed by the media
// profile; content that does not fit still gets bounds, possibly outside
// the canvas, so normalization can see the overflow.
func (h *Headless) Measure(ctx context.Context, items item.List, profile media.Profile) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}

	canvas := profile.Canvas()

	var frameKey string
	if h.opts.Cache != nil {
		frameKey = h.opts.Keyer.FrameKey(profile.ID, cache.ItemsHash(items))
		if data, ok, _ := h.opts.Cache.Get(ctx, frameKey); ok {
			var cached Frame
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
		}
	}

	frame := Frame{Canvas: canvas, Bounds: make(map[string]geom.Rect, len(items))}
	cursor := profile.MarginDots

	for _, it := range items {
		size := h.itemSize(ctx, it)

		var bounds geom.Rect
		switch {
		case it.PositionMode == item.PositionAbsolute && it.Type == item.TypeShape:
			tl := geom.CenterOffsetToTopLeft(canvas, size.Width, size.Height, it.XOffset, it.YOffset)
			bounds = geom.RotatedBounds(geom.Rect{X: tl.X, Y: tl.Y, Width: size.Width, Height: size.Height}, it.Rotation)
		case it.PositionMode == item.PositionAbsolute:
			bounds = geom.RotatedBounds(geom.Rect{X: it.XOffset, Y: it.YOffset, Width: size.Width, Height: size.Height}, it.Rotation)
		default:
			// Flow: the rotated box is placed at the cursor, vertically
			// centred, nudged by the offsets.
			rot := geom.RotatedSize(size.Width, size.Height, it.Rotation)
			x := cursor + it.XOffset
			y := (canvas.Height-rot.Height)/2 + it.YOffset
			bounds = geom.Rect{X: x, Y: y, Width: rot.Width, Height: rot.Height}
			cursor = x + rot.Width + flowGap
		}

		frame.Bounds[it.ID] = bounds
	}

	if h.opts.Cache != nil {
		if data, err := json.Marshal(frame); err == nil {
			_ = h.opts.Cache.Set(ctx, frameKey, data, cache.TTLFrame)
		}
	}

	return frame, nil
}

// itemSize returns the unrotated box of an item.
func (h *Headless) itemSize(ctx context.Context, it *item.Item) geom.Size {
	if it.Type == item.TypeText {
		return h.measureText(ctx, it)
	}
	return ContentSize(it)
}

// ContentSize returns the unrotated box of a non-text item from its
// fields alone. Text extents depend on the font and come from the
// measurer. Previews share this so drawn content matches measured bounds.
func ContentSize(it *item.Item) geom.Size {
	switch it.Type {
	case item.TypeQR:
		return geom.Size{Width: it.Size, Height: it.Size}
	case item.TypeBarcode:
		w := BarcodeWidth(it.Protocol, it.Text)
		height := it.Height
		if it.ShowText {
			height += CaptionHeight
		}
		return geom.Size{Width: w, Height: height}
	case item.TypeShape:
		height := it.Height
		if it.ShapeType == item.ShapeLine && height <= 0 {
			height = it.LineWidth
		}
		return geom.Size{Width: it.Width, Height: height}
	case item.TypeImage:
		return geom.Size{Width: it.Width, Height: it.Height}
	case item.TypeIcon:
		return geom.Size{Width: it.Size, Height: it.Size}
	}
	return geom.Size{}
}

// textMetrics is the cached measurement payload.
type textMetrics struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// measureText measures a text item, consulting the cache first.
func (h *Headless) measureText(ctx context.Context, it *item.Item) geom.Size {
	var key string
	if h.opts.Cache != nil {
		key = h.opts.Keyer.TextKey(it.FontFamily, it.FontSize, it.TextBold, it.TextItalic, it.Text)
		if data, ok, _ := h.opts.Cache.Get(ctx, key); ok {
			var m textMetrics
			if err := json.Unmarshal(data, &m); err == nil {
				return geom.Size{Width: m.W, Height: m.H}
			}
		}
	}

	size := h.measureTextUncached(it)

	if h.opts.Cache != nil {
		data, err := json.Marshal(textMetrics{W: size.Width, H: size.Height})
		if err == nil {
			_ = h.opts.Cache.Set(ctx, key, data, cache.TTLMeasure)
		}
	}
	return size
}

func (h *Headless) measureTextUncached(it *item.Item) geom.Size {
	lines := strings.Split(it.Text, "\n")

	if !h.opts.EstimateOnly {
		style := fonts.Style{Family: it.FontFamily, Bold: it.TextBold, Italic: it.TextItalic}
		if path := h.resolver.Path(style); path != "" {
			dc := gg.NewContext(1, 1)
			if err := dc.LoadFontFace(path, it.FontSize); err == nil {
				var width float64
				for _, line := range lines {
					w, _ := dc.MeasureString(line)
					if w > width {
						width = w
					}
				}
				return geom.Size{
					Width:  width,
					Height: lineHeightFactor * it.FontSize * float64(len(lines)),
				}
			}
			h.opts.Logger.Debug("font face unusable, estimating", "path", path)
		}
	}

	return estimateText(lines, it.FontSize)
}

// estimateText approximates text extents from rune counts. Deterministic
// and font-free; intentionally a little generous so estimated layouts do
// not overlap once a real face renders narrower.
func estimateText(lines []string, fontSize float64) geom.Size {
	var longest int
	for _, line := range lines {
		if n := utf8.RuneCountInString(line); n > longest {
			longest = n
		}
	}
	return geom.Size{
		Width:  estimateWidthFactor * fontSize * float64(longest),
		Height: lineHeightFactor * fontSize * float64(len(lines)),
	}
}

// BarcodeWidth approximates the module count of a 1D symbology at one dot
// per module, with a readable minimum.
func BarcodeWidth(protocol item.Protocol, text string) float64 {
	n := len(text)
	var modules int
	switch protocol {
	case item.ProtocolEAN13:
		modules = 95
	case item.ProtocolCode39:
		modules = 16 * (n + 2)
	default: // code128
		modules = 11*(n+3) + 2
	}
	if modules < 32 {
		modules = 32
	}
	return float64(modules)
}

// Ensure Headless implements Measurer.
var _ Measurer = (*Headless)(nil)
