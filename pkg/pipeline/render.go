package pipeline

import (
	"context"

	"github.com/labelsmith/labelsmith/pkg/cache"
	"github.com/labelsmith/labelsmith/pkg/errors"
	"github.com/labelsmith/labelsmith/pkg/preview"
)

// PreviewOptions selects the artifact to render.
type PreviewOptions struct {
	// Format is one of FormatPNG, FormatSVG, FormatDOT.
	Format string

	// Scale overrides the configured PNG scale when positive. The
	// bounds-debug formats ignore it.
	Scale float64
}

// Preview renders st to the requested format. The second return reports
// whether the artifact came from the cache.
func (r *Runner) Preview(ctx context.Context, st State, opts PreviewOptions) ([]byte, bool, error) {
	if err := ValidateFormat(opts.Format); err != nil {
		return nil, false, err
	}
	profile, err := r.profile(st)
	if err != nil {
		return nil, false, err
	}

	scale := r.preview.Scale
	if opts.Scale > 0 {
		scale = opts.Scale
	}
	// Scale only changes PNG bytes; keep the other formats on one key.
	keyScale := scale
	if opts.Format != FormatPNG {
		keyScale = 0
	}

	var key string
	if r.cache != nil {
		key = r.keyer.ArtifactKey(cache.ItemsHash(st.Items), cache.ArtifactKeyOpts{
			MediaID: profile.ID,
			Format:  opts.Format,
			Scale:   keyScale,
		})
		if data, ok, _ := r.cache.Get(ctx, key); ok {
			return data, true, nil
		}
	}

	frame, err := r.measurer.Measure(ctx, st.Items, profile)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeRenderUnavailable, err, "measure layout")
	}

	var data []byte
	switch opts.Format {
	case FormatPNG:
		pOpts := r.preview
		pOpts.Scale = scale
		data, err = preview.New(pOpts).PNG(ctx, st.Items, profile, frame)
	case FormatSVG:
		data, err = preview.DebugSVG(ctx, st.Items, frame)
	case FormatDOT:
		data = []byte(preview.DOT(st.Items, frame))
	}
	if err != nil {
		return nil, false, err
	}

	if r.cache != nil {
		_ = r.cache.Set(ctx, key, data, cache.TTLArtifact)
	}
	return data, false, nil
}
