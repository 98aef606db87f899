package normalize

import (
	"context"
	"testing"

	"github.com/labelsmith/labelsmith/pkg/bridge"
	"github.com/labelsmith/labelsmith/pkg/editor"
	"github.com/labelsmith/labelsmith/pkg/item"
	"github.com/labelsmith/labelsmith/pkg/media"
	"github.com/labelsmith/labelsmith/pkg/render"
)

// newTestState builds a State over a workspace seeded with the given
// items, measured by the deterministic estimate measurer.
func newTestState(t *testing.T, mediaID string, items ...*item.Item) *State {
	t.Helper()
	profile, err := media.Builtin().Get(mediaID)
	if err != nil {
		t.Fatalf("Get(%q) error: %v", mediaID, err)
	}
	ws := editor.NewWorkspace(editor.WorkspaceOptions{Media: profile})
	ws.ReplaceAll(items)

	measurer := render.NewHeadless(render.HeadlessOptions{EstimateOnly: true})
	refresh := func(ctx context.Context) (render.Frame, error) {
		return measurer.Measure(ctx, ws.Items(), ws.Media())
	}
	frame, err := refresh(context.Background())
	if err != nil {
		t.Fatalf("measure error: %v", err)
	}
	return &State{
		Editor:  ws,
		Media:   profile,
		Frame:   frame,
		Refresh: refresh,
	}
}

// refreshed re-measures the state's workspace and returns the frame.
func refreshed(t *testing.T, st *State) render.Frame {
	t.Helper()
	frame, err := st.Refresh(context.Background())
	if err != nil {
		t.Fatalf("refresh error: %v", err)
	}
	return frame
}

func hasWarning(warnings []string, key string) bool {
	for _, w := range warnings {
		if w == key {
			return true
		}
	}
	return false
}

// stubPass records whether it ran.
type stubPass struct {
	name    string
	matches bool
	applied int
}

func (p *stubPass) Name() string                       { return p.name }
func (p *stubPass) Match(item.List, render.Frame) bool { return p.matches }

func (p *stubPass) Apply(context.Context, *State) (Outcome, error) {
	p.applied++
	return Outcome{Mutated: true, Resolved: true, Warnings: []string{p.name}}, nil
}

func TestDefaultPassOrder(t *testing.T) {
	want := []string{"inventory-card", "qr-form", "boxed-barcode-form", "fallback"}
	passes := DefaultPasses()
	if len(passes) != len(want) {
		t.Fatalf("len(DefaultPasses()) = %d, want %d", len(passes), len(want))
	}
	for i, p := range passes {
		if p.Name() != want[i] {
			t.Errorf("pass %d = %q, want %q", i, p.Name(), want[i])
		}
	}
}

func TestChainFirstMatchWins(t *testing.T) {
	st := newTestState(t, "tape-12", item.NewText())

	first := &stubPass{name: "first", matches: true}
	second := &stubPass{name: "second", matches: true}
	ch := NewChain(ChainConfig{
		Editor:  st.Editor,
		Refresh: st.Refresh,
		Passes:  []Pass{first, second},
	})

	warns, err := ch.Normalize(context.Background(), st.Frame)
	if err != nil {
		t.Fatalf("Normalize error: %v", err)
	}
	if first.applied != 1 {
		t.Errorf("first pass applied %d times, want 1", first.applied)
	}
	if second.applied != 0 {
		t.Errorf("second pass applied %d times, want 0", second.applied)
	}
	if !hasWarning(warns, "first") {
		t.Errorf("warnings = %v, want the first pass's", warns)
	}
}

func TestChainSkipsNonMatching(t *testing.T) {
	st := newTestState(t, "tape-12", item.NewText())

	skipped := &stubPass{name: "skipped", matches: false}
	ran := &stubPass{name: "ran", matches: true}
	ch := NewChain(ChainConfig{
		Editor:  st.Editor,
		Refresh: st.Refresh,
		Passes:  []Pass{skipped, ran},
	})

	if _, err := ch.Normalize(context.Background(), st.Frame); err != nil {
		t.Fatalf("Normalize error: %v", err)
	}
	if skipped.applied != 0 || ran.applied != 1 {
		t.Errorf("applied = %d/%d, want 0/1", skipped.applied, ran.applied)
	}
}

func TestChainEmptyItemsNoOp(t *testing.T) {
	st := newTestState(t, "tape-12")

	p := &stubPass{name: "any", matches: true}
	ch := NewChain(ChainConfig{Editor: st.Editor, Refresh: st.Refresh, Passes: []Pass{p}})

	warns, err := ch.Normalize(context.Background(), st.Frame)
	if err != nil {
		t.Fatalf("Normalize error: %v", err)
	}
	if warns != nil {
		t.Errorf("warnings = %v, want nil", warns)
	}
	if p.applied != 0 {
		t.Errorf("pass applied on empty item set")
	}
}

// newBridgeWithChain wires a full bridge whose batches flow into the
// default normalization chain, the way the server assembles it.
func newBridgeWithChain(t *testing.T) (*bridge.Bridge, *editor.Workspace) {
	t.Helper()
	ws := editor.NewWorkspace(editor.WorkspaceOptions{})
	measurer := render.NewHeadless(render.HeadlessOptions{EstimateOnly: true})
	sched := render.NewScheduler(measurer, ws.Snapshot, nil)
	t.Cleanup(sched.Close)
	ws.SetFrameSource(sched.Snapshot)

	ch := NewChain(ChainConfig{
		Editor: ws,
		Refresh: func(ctx context.Context) (render.Frame, error) {
			return sched.Request().Wait(ctx)
		},
	})
	return bridge.New(bridge.Config{Editor: ws, Scheduler: sched, Normalizer: ch}), ws
}

func TestRunActions_AmbiguousFragmentsLowConfidence(t *testing.T) {
	b, ws := newBridgeWithChain(t)

	res := b.RunActions(context.Background(), []bridge.Action{
		{Verb: bridge.VerbAddItem, ItemType: "text", Fields: map[string]any{"content": "Herbstfest Eingang Halle 2\nEinlass ab 18:00"}},
		{Verb: bridge.VerbAddItem, ItemType: "text", Fields: map[string]any{"content": "Einlass ab 18:00"}},
		{Verb: bridge.VerbAddItem, ItemType: "text", Fields: map[string]any{"content": "Herbstfest Eingang Halle 2"}},
	}, bridge.Options{})

	if len(res.Errors) != 0 {
		t.Fatalf("errors = %v, want none", res.Errors)
	}
	if !hasWarning(res.Warnings, WarningLowConfidence) {
		t.Errorf("warnings = %v, want %s", res.Warnings, WarningLowConfidence)
	}
	if texts := ws.Items().OfType(item.TypeText); len(texts) != 1 {
		t.Errorf("len(texts) = %d, want 1 after dedup", len(texts))
	}
}

func TestRunActions_InventoryBatchNormalizes(t *testing.T) {
	b, ws := newBridgeWithChain(t)

	res := b.RunActions(context.Background(), []bridge.Action{
		{Verb: bridge.VerbClearItems},
		{Verb: bridge.VerbAddItem, ItemType: "text", Fields: map[string]any{
			"content": "Artikelname:\nWinkelschleifer\nArtikelnummer:\nWS-125-4400\nLagerplatz:\nRegal 7/3",
		}},
		{Verb: bridge.VerbAddItem, ItemType: "qr", Fields: map[string]any{"data": "WS-125-4400"}},
	}, bridge.Options{})

	if len(res.Errors) != 0 {
		t.Fatalf("errors = %v, want none", res.Errors)
	}
	if hasWarning(res.Warnings, WarningLowConfidence) {
		t.Errorf("inventory batch flagged low confidence: %v", res.Warnings)
	}

	items := ws.Items()
	if got := len(items.OfType(item.TypeText)); got != 6 {
		t.Errorf("len(texts) = %d, want 6", got)
	}
	if got := len(items.OfType(item.TypeQR)); got != 1 {
		t.Errorf("len(qrs) = %d, want 1", got)
	}
}
