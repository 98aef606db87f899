// Package preview renders label layouts into shareable artifacts.
//
// Two views exist. The raster view ([Renderer.PNG]) draws the label
// roughly as a printer would put it on tape: black content on white,
// real qr and barcode modules, system fonts when available. The debug
// view ([DOT], [DebugSVG], [DebugPNG]) draws the measured bounds
// instead, one pinned box per item, for diagnosing layout repair.
//
// # Usage
//
//	r := preview.New(preview.Options{})
//	png, err := r.PNG(ctx, ws.Items(), profile, frame)
//
// Rendering never fails on bad content: an unencodable barcode, a
// missing image source, or an absent font face degrade to placeholder
// boxes so a preview always comes back.
package preview

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/fogleman/gg"

	"github.com/labelsmith/labelsmith/pkg/errors"
	"github.com/labelsmith/labelsmith/pkg/fonts"
	"github.com/labelsmith/labelsmith/pkg/item"
	"github.com/labelsmith/labelsmith/pkg/media"
	"github.com/labelsmith/labelsmith/pkg/render"
)

// DefaultScale converts device units to pixels when Options.Scale is
// unset. Tape heads are coarse; 2x keeps small text legible on screen.
const DefaultScale = 2.0

// Options configures a preview Renderer. The zero value renders at
// DefaultScale with discovered system fonts.
type Options struct {
	// Scale converts device units to preview pixels.
	Scale float64

	// FontPath forces a specific TTF file for all text styles.
	FontPath string

	// HTTPClient fetches http(s) image sources. Nil uses a default
	// client with the standard timeout.
	HTTPClient *http.Client

	Logger *log.Logger
}

// Renderer draws layouts into PNG images. Safe for concurrent use.
type Renderer struct {
	opts     Options
	scale    float64
	resolver *fonts.Resolver
}

// New creates a preview renderer.
func New(opts Options) *Renderer {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	scale := opts.Scale
	if scale <= 0 {
		scale = DefaultScale
	}
	resolver := fonts.NewResolver()
	if opts.FontPath != "" {
		resolver = fonts.NewFixedResolver(opts.FontPath)
	}
	return &Renderer{
		opts:     opts,
		scale:    scale,
		resolver: resolver,
	}
}

// PNG renders the layout as a raster image. Items are drawn in list
// order at the positions the frame measured for them; items absent from
// the frame are skipped.
func (r *Renderer) PNG(ctx context.Context, items item.List, profile media.Profile, frame render.Frame) ([]byte, error) {
	canvas := profile.Canvas()
	w := int(math.Ceil(canvas.Width * r.scale))
	h := int(math.Ceil(canvas.Height * r.scale))
	if w < 1 || h < 1 {
		return nil, errors.New(errors.ErrCodeInvalidMedia, "media %q has no drawable canvas", profile.ID)
	}

	dc := gg.NewContext(w, h)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	for _, it := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		bounds, ok := frame.Bounds[it.ID]
		if !ok {
			r.opts.Logger.Debug("item not measured, skipping", "item", it.ID)
			continue
		}
		r.drawItem(ctx, dc, it, bounds)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
