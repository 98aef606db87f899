package pipeline

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/labelsmith/labelsmith/pkg/bridge"
	"github.com/labelsmith/labelsmith/pkg/cache"
	"github.com/labelsmith/labelsmith/pkg/editor"
	"github.com/labelsmith/labelsmith/pkg/errors"
	"github.com/labelsmith/labelsmith/pkg/media"
	"github.com/labelsmith/labelsmith/pkg/normalize"
	"github.com/labelsmith/labelsmith/pkg/preview"
	"github.com/labelsmith/labelsmith/pkg/render"
)

// Runner executes action batches and renders previews against layout
// states. It is stateless between calls apart from the cache and logger,
// so one Runner can serve many states; concurrent Apply calls on the
// SAME state are the caller's problem (the HTTP service serializes per
// session).
type Runner struct {
	cache    cache.Cache
	keyer    cache.Keyer
	measurer render.Measurer
	media    *media.Registry
	preview  preview.Options
	logger   *log.Logger
}

// NewRunner creates a runner, filling in defaults for any Config field
// left zero.
func NewRunner(cfg Config) *Runner {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Keyer == nil {
		cfg.Keyer = cache.NewDefaultKeyer()
	}
	if cfg.Media == nil {
		cfg.Media = media.Builtin()
	}
	if cfg.Measurer == nil {
		cfg.Measurer = render.NewHeadless(render.HeadlessOptions{
			Cache:  cfg.Cache,
			Keyer:  cfg.Keyer,
			Logger: cfg.Logger,
		})
	}
	if cfg.Preview.Logger == nil {
		cfg.Preview.Logger = cfg.Logger
	}
	return &Runner{
		cache:    cfg.Cache,
		keyer:    cfg.Keyer,
		measurer: cfg.Measurer,
		media:    cfg.Media,
		preview:  cfg.Preview,
		logger:   cfg.Logger,
	}
}

// profile resolves the state's media id, falling back to the registry
// default when the id is empty.
func (r *Runner) profile(st State) (media.Profile, error) {
	if st.Media == "" {
		return r.media.Default(), nil
	}
	p, err := r.media.Get(st.Media)
	if err != nil {
		return media.Profile{}, errors.Wrap(errors.ErrCodeInvalidMedia, err, "media %q", st.Media)
	}
	return p, nil
}

// Apply runs a batch against st and returns the updated state. The
// engine is assembled fresh for the call: workspace, scheduler,
// normalization chain, bridge. Per-action failures land in the result's
// Errors, not in the returned error; the error covers setup problems
// such as an unknown media id.
func (r *Runner) Apply(ctx context.Context, st State, batch bridge.Batch) (State, bridge.Result, error) {
	profile, err := r.profile(st)
	if err != nil {
		return st, bridge.Result{}, err
	}

	ws := editor.NewWorkspace(editor.WorkspaceOptions{Media: profile, Logger: r.logger})
	ws.ReplaceAll(st.Items)
	ws.SetSelectedItemIDs(st.SelectedIDs)

	sched := render.NewScheduler(r.measurer, ws.Snapshot, r.logger)
	defer sched.Close()
	ws.SetFrameSource(sched.Snapshot)

	chain := normalize.NewChain(normalize.ChainConfig{
		Editor: ws,
		Refresh: func(ctx context.Context) (render.Frame, error) {
			return sched.Request().Wait(ctx)
		},
		Logger: r.logger,
	})

	b := bridge.New(bridge.Config{
		Editor:     ws,
		Scheduler:  sched,
		Media:      r.media,
		Normalizer: chain,
		Logger:     r.logger,
	})

	res := b.RunActions(ctx, batch.Actions, bridge.Options{
		ForceRebuild: batch.ForceRebuild,
		Media:        batch.Media,
	})

	return State{
		Media:       ws.Media().ID,
		Items:       ws.Items(),
		SelectedIDs: ws.SelectedItemIDs(),
	}, res, nil
}

// Close releases the runner's resources, primarily the cache.
func (r *Runner) Close() error {
	if r.cache != nil {
		return r.cache.Close()
	}
	return nil
}
