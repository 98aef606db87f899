// Package bridge interprets action batches against the layout editor.
//
// A batch is an ordered list of actions from an external proposer. The
// bridge resolves symbolic targets (last, first, selected, item-<n>),
// applies alias-tolerant payloads, and reports structural problems as
// errors and recoverable imprecision as warnings. Nothing aborts early: a
// bad action is reported and the rest of the batch still runs.
//
// After the mutations the bridge reconciles with the render scheduler so
// normalization starts from geometry that covers the mutated item set, not
// a stale frame from before the batch.
//
// # Rebuild mode
//
// A rebuild batch describes a layout from scratch. Missing update targets
// are created instead of reported, and align_selected is suppressed when
// every selected item already carries explicit offsets, since rebuild
// placement comes from normalization. The mode is inferred for batches
// that begin with clear_items and then only add or update.
package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/labelsmith/labelsmith/pkg/editor"
	"github.com/labelsmith/labelsmith/pkg/errors"
	"github.com/labelsmith/labelsmith/pkg/item"
	"github.com/labelsmith/labelsmith/pkg/media"
	"github.com/labelsmith/labelsmith/pkg/observability"
	"github.com/labelsmith/labelsmith/pkg/render"
)

// maxReconcileRetries bounds how often a batch re-requests geometry when
// the measured frame misses items. The ceiling is soft: running out
// proceeds with what exists and lets the normalizers flag placement.
const maxReconcileRetries = 3

// Result is what a batch run reports back to the proposer. Both slices
// are always non-nil so they serialize as arrays.
type Result struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Options modify how a batch runs.
type Options struct {
	// ForceRebuild marks the batch as a from-scratch rebuild. Nil means
	// infer the mode from the batch shape.
	ForceRebuild *bool

	// Media switches the active media profile before the batch runs.
	Media string
}

// Normalizer repairs the item set after a batch, starting from the
// reconciled frame.
type Normalizer interface {
	Normalize(ctx context.Context, frame render.Frame) (warnings []string, err error)
}

// Config wires a Bridge.
type Config struct {
	Editor     editor.Editor
	Scheduler  *render.Scheduler
	Media      *media.Registry
	Normalizer Normalizer
	Logger     *log.Logger
}

// Bridge runs action batches against one workspace.
type Bridge struct {
	editor     editor.Editor
	scheduler  *render.Scheduler
	registry   *media.Registry
	normalizer Normalizer
	logger     *log.Logger
}

// New creates a bridge. Editor and Scheduler are required; a nil Media
// registry falls back to the built-ins and a nil Normalizer skips
// normalization.
func New(cfg Config) *Bridge {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Media == nil {
		cfg.Media = media.Builtin()
	}
	return &Bridge{
		editor:     cfg.Editor,
		scheduler:  cfg.Scheduler,
		registry:   cfg.Media,
		normalizer: cfg.Normalizer,
		logger:     cfg.Logger,
	}
}

// RunActions executes one batch. Batches must not overlap; the caller
// serializes them.
func (b *Bridge) RunActions(ctx context.Context, actions []Action, opts Options) Result {
	res := Result{Errors: []string{}, Warnings: []string{}}
	batch := newBatchState()
	hooks := observability.Bridge()

	rebuild := inferRebuild(actions)
	if opts.ForceRebuild != nil {
		rebuild = *opts.ForceRebuild
	}

	start := time.Now()
	applied := 0
	hooks.OnBatchStart(ctx, len(actions), rebuild)

	if opts.Media != "" {
		profile, err := b.registry.Get(opts.Media)
		if err != nil {
			res.Errors = append(res.Errors, errors.UserMessage(err))
		} else {
			b.editor.SetMedia(profile)
		}
	}

	for i, a := range actions {
		for _, key := range a.Unknown {
			res.Warnings = append(res.Warnings, fmt.Sprintf("action %d: unknown key %q", i+1, key))
		}

		errsBefore := len(res.Errors)
		var ok bool
		switch a.Verb {
		case VerbAddItem:
			ok = b.applyAdd(&res, batch, a)
		case VerbUpdateItem:
			ok = b.applyUpdate(&res, batch, a, rebuild)
		case VerbClearItems:
			b.editor.Clear()
			batch.reset()
			ok = true
		case VerbSelectItems:
			ok = b.applySelect(&res, batch, a, rebuild)
		case VerbAlignSelected:
			ok = b.applyAlign(&res, batch, a, rebuild)
		default:
			res.Errors = append(res.Errors, fmt.Sprintf("unknown action %q", a.Verb))
		}

		if ok {
			applied++
			hooks.OnActionApplied(ctx, string(a.Verb), a.Target)
			continue
		}
		reason := "suppressed"
		if len(res.Errors) > errsBefore {
			reason = res.Errors[len(res.Errors)-1]
		}
		hooks.OnActionRejected(ctx, string(a.Verb), reason)
	}

	frame, reconWarns := b.reconcile(ctx)
	res.Warnings = append(res.Warnings, reconWarns...)

	if ctx.Err() == nil && b.normalizer != nil {
		warns, err := b.normalizer.Normalize(ctx, frame)
		res.Warnings = append(res.Warnings, warns...)
		if err != nil {
			res.Errors = append(res.Errors, errors.UserMessage(err))
		}
	}

	hooks.OnBatchComplete(ctx, applied, len(res.Errors), time.Since(start))
	return res
}

func (b *Bridge) applyAdd(res *Result, batch *batchState, a Action) bool {
	t, err := item.ParseType(a.ItemType)
	if err != nil {
		res.Errors = append(res.Errors, errors.UserMessage(err))
		return false
	}
	created := b.createItem(t, a.Fields)
	batch.note(created.ID)
	res.Warnings = append(res.Warnings, b.applyFields(created.ID, a.Fields)...)
	return true
}

func (b *Bridge) applyUpdate(res *Result, batch *batchState, a Action, rebuild bool) bool {
	ids, ok := resolveTarget(b.editor, batch, a.Target)
	if !ok {
		if !rebuild {
			res.Errors = append(res.Errors, fmt.Sprintf("cannot resolve target %q", a.Target))
			return false
		}
		// A rebuild proposer may not track ids precisely; a dangling
		// target becomes a creation request.
		t := inferItemType(a.Fields)
		created := b.createItem(t, a.Fields)
		batch.note(created.ID)
		b.logger.Debug("created missing update target", "target", a.Target, "type", t)
		ids = []string{created.ID}
	}
	for _, id := range ids {
		res.Warnings = append(res.Warnings, b.applyFields(id, a.Fields)...)
	}
	return true
}

func (b *Bridge) applySelect(res *Result, batch *batchState, a Action, rebuild bool) bool {
	refs := a.Targets
	if len(refs) == 0 && a.Target != "" {
		refs = []string{a.Target}
	}

	var ids []string
	seen := make(map[string]bool)
	for _, ref := range refs {
		resolved, ok := resolveTarget(b.editor, batch, ref)
		if !ok {
			if rebuild {
				b.logger.Debug("select skipped dangling target", "target", ref)
				continue
			}
			res.Errors = append(res.Errors, fmt.Sprintf("cannot resolve target %q", ref))
			continue
		}
		for _, id := range resolved {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	b.editor.SetSelectedItemIDs(ids)
	batch.selected = ids
	return true
}

func (b *Bridge) applyAlign(res *Result, batch *batchState, a Action, rebuild bool) bool {
	mode, err := editor.ParseAlignMode(a.Mode)
	if err != nil {
		res.Errors = append(res.Errors, err.Error())
		return false
	}
	ref, err := editor.ParseAlignReference(a.Reference)
	if err != nil {
		res.Errors = append(res.Errors, err.Error())
		return false
	}

	if rebuild && b.selectionPinned(batch) {
		b.logger.Debug("align suppressed: selection carries explicit offsets")
		return false
	}

	out := b.editor.AlignSelectedItems(mode, ref)
	if !out.Changed && out.Reason != "" {
		res.Warnings = append(res.Warnings, fmt.Sprintf("align_selected: %s", out.Reason))
	}
	return true
}

// selectionPinned reports whether the selection is non-empty and every
// selected item carries an explicit offset.
func (b *Bridge) selectionPinned(batch *batchState) bool {
	ids := b.editor.SelectedItemIDs()
	if len(ids) == 0 {
		ids = batch.selected
	}
	if len(ids) == 0 {
		return false
	}
	for _, id := range ids {
		it, ok := b.editor.Item(id)
		if !ok {
			continue
		}
		if !it.HasExplicitOffset() {
			return false
		}
	}
	return true
}

// applyFields merges a payload onto a stored item and returns warnings.
func (b *Bridge) applyFields(id string, fields map[string]any) []string {
	var warns []string
	b.editor.Mutate(id, func(it *item.Item) {
		warns = mergeFields(it, fields)
	})
	return warns
}

// createItem appends a fresh item of the given type. For shapes the kind
// is peeked from the payload so creation defaults fit.
func (b *Bridge) createItem(t item.Type, fields map[string]any) *item.Item {
	switch t {
	case item.TypeQR:
		return b.editor.AddQRItem()
	case item.TypeBarcode:
		return b.editor.AddBarcodeItem()
	case item.TypeShape:
		kind := item.ShapeRect
		for _, key := range []string{"shapeType", "shape_type", "shape", "kind"} {
			v, ok := fields[key]
			if !ok {
				continue
			}
			if s, ok := asString(v); ok {
				if k, ok := parseShapeKind(s); ok {
					kind = k
					break
				}
			}
		}
		return b.editor.AddShapeItem(kind)
	case item.TypeImage:
		return b.editor.AddImageItem()
	case item.TypeIcon:
		return b.editor.AddIconItem()
	default:
		return b.editor.AddTextItem()
	}
}

// reconcile obtains a frame that covers the current item set, retrying a
// bounded number of times when the scheduler has not caught up.
func (b *Bridge) reconcile(ctx context.Context) (render.Frame, []string) {
	var frame render.Frame
	for attempt := 0; ; attempt++ {
		f, err := b.scheduler.Request().Wait(ctx)
		if err != nil {
			return frame, []string{fmt.Sprintf("geometry unavailable: %v", err)}
		}
		frame = f

		missing := frame.Missing(b.editor.Items().IDs())
		if len(missing) == 0 {
			return frame, nil
		}
		if attempt >= maxReconcileRetries {
			b.logger.Debug("proceeding with incomplete geometry", "missing", len(missing))
			return frame, nil
		}
		observability.Render().OnReconcileRetry(ctx, attempt+1, len(missing))
	}
}

// inferRebuild reports whether an unflagged batch looks like a rebuild:
// it starts by clearing and then only creates and edits.
func inferRebuild(actions []Action) bool {
	if len(actions) == 0 || actions[0].Verb != VerbClearItems {
		return false
	}
	for _, a := range actions[1:] {
		if a.Verb != VerbAddItem && a.Verb != VerbUpdateItem {
			return false
		}
	}
	return true
}

// inferItemType guesses what type an auto-created update target should
// have from the payload keys.
func inferItemType(fields map[string]any) item.Type {
	has := func(keys ...string) bool {
		for _, k := range keys {
			if _, ok := fields[k]; ok {
				return true
			}
		}
		return false
	}
	switch {
	case has("errorCorrection", "error_correction", "ecc", "qrErrorCorrectionLevel", "qr_error_correction_level"):
		return item.TypeQR
	case has("protocol", "format", "barcodeFormat", "barcode_format", "showText", "show_text", "barcode_show_text"):
		return item.TypeBarcode
	case has("shapeType", "shape_type", "shape", "kind", "lineWidth", "line_width", "strokeWidth", "stroke_width", "filled"):
		return item.TypeShape
	case has("source", "src", "url", "path"):
		return item.TypeImage
	case has("icon", "symbol"):
		return item.TypeIcon
	default:
		return item.TypeText
	}
}
