package render

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/labelsmith/labelsmith/pkg/cache"
	"github.com/labelsmith/labelsmith/pkg/item"
	"github.com/labelsmith/labelsmith/pkg/media"
)

func estimateMeasurer() *Headless {
	return NewHeadless(HeadlessOptions{EstimateOnly: true})
}

func tape12(t *testing.T) media.Profile {
	t.Helper()
	p, err := media.Builtin().Get("tape-12")
	if err != nil {
		t.Fatalf("Get(tape-12) error = %v", err)
	}
	return p
}

func approx(got, want float64) bool {
	return math.Abs(got-want) < 1e-9
}

func TestHeadless_EstimateTextExtents(t *testing.T) {
	h := estimateMeasurer()
	profile := tape12(t)

	short := item.NewText()
	short.Text = "ab"
	short.FontSize = 10
	long := item.NewText()
	long.Text = "abcdefgh"
	long.FontSize = 10
	tall := item.NewText()
	tall.Text = "ab\ncd\nef"
	tall.FontSize = 10

	frame, err := h.Measure(context.Background(), item.List{short, long, tall}, profile)
	if err != nil {
		t.Fatalf("Measure() error = %v", err)
	}

	sb := frame.Bounds[short.ID]
	lb := frame.Bounds[long.ID]
	tb := frame.Bounds[tall.ID]

	if !approx(sb.Width, 12) {
		t.Errorf("short width = %v, want 12", sb.Width)
	}
	if lb.Width <= sb.Width {
		t.Errorf("longer text width %v not greater than shorter %v", lb.Width, sb.Width)
	}
	if !approx(tb.Height, 36) {
		t.Errorf("three-line height = %v, want 36", tb.Height)
	}
	if !approx(sb.Height, 12) {
		t.Errorf("one-line height = %v, want 12", sb.Height)
	}
}

func TestHeadless_FlowAdvancesCursor(t *testing.T) {
	h := estimateMeasurer()
	profile := tape12(t)

	first := item.NewText()
	first.Text = "abcd"
	first.FontSize = 10
	second := item.NewQR()
	second.Size = 50

	frame, err := h.Measure(context.Background(), item.List{first, second}, profile)
	if err != nil {
		t.Fatalf("Measure() error = %v", err)
	}

	fb := frame.Bounds[first.ID]
	qb := frame.Bounds[second.ID]

	if !approx(fb.X, profile.MarginDots) {
		t.Errorf("first item x = %v, want margin %v", fb.X, profile.MarginDots)
	}
	if !approx(qb.X, fb.MaxX()+flowGap) {
		t.Errorf("second item x = %v, want %v", qb.X, fb.MaxX()+flowGap)
	}
	if qb.Width != 50 || qb.Height != 50 {
		t.Errorf("qr bounds = %vx%v, want 50x50", qb.Width, qb.Height)
	}

	// Flow items sit vertically centred on the canvas.
	canvas := profile.Canvas()
	if !approx(qb.Y, (canvas.Height-50)/2) {
		t.Errorf("qr y = %v, want %v", qb.Y, (canvas.Height-50)/2)
	}
}

func TestHeadless_AbsolutePlacement(t *testing.T) {
	h := estimateMeasurer()
	profile := tape12(t)

	it := item.NewText()
	it.Text = "abcd"
	it.FontSize = 10
	it.PositionMode = item.PositionAbsolute
	it.XOffset = 30
	it.YOffset = 10

	frame, err := h.Measure(context.Background(), item.List{it}, profile)
	if err != nil {
		t.Fatalf("Measure() error = %v", err)
	}

	b := frame.Bounds[it.ID]
	if !approx(b.X, 30) || !approx(b.Y, 10) {
		t.Errorf("bounds origin = (%v, %v), want (30, 10)", b.X, b.Y)
	}
}

func TestHeadless_ShapeOffsetsAreCenterRelative(t *testing.T) {
	h := estimateMeasurer()
	profile := tape12(t)

	sh := item.NewShape(item.ShapeRect)
	sh.Width = 40
	sh.Height = 40

	frame, err := h.Measure(context.Background(), item.List{sh}, profile)
	if err != nil {
		t.Fatalf("Measure() error = %v", err)
	}

	// Zero offset means centred on the canvas, not at the origin.
	canvas := profile.Canvas()
	b := frame.Bounds[sh.ID]
	if !approx(b.X, canvas.Width/2-20) || !approx(b.Y, canvas.Height/2-20) {
		t.Errorf("shape origin = (%v, %v), want (%v, %v)",
			b.X, b.Y, canvas.Width/2-20, canvas.Height/2-20)
	}
}

func TestHeadless_RotationExpandsBounds(t *testing.T) {
	h := estimateMeasurer()
	profile := tape12(t)

	it := item.NewText()
	it.Text = "abcd" // 24x12 at size 10
	it.FontSize = 10
	it.Rotation = 90

	frame, err := h.Measure(context.Background(), item.List{it}, profile)
	if err != nil {
		t.Fatalf("Measure() error = %v", err)
	}

	b := frame.Bounds[it.ID]
	if !approx(b.Width, 12) || !approx(b.Height, 24) {
		t.Errorf("rotated bounds = %vx%v, want 12x24", b.Width, b.Height)
	}
}

func TestHeadless_BarcodeCaptionHeight(t *testing.T) {
	h := estimateMeasurer()
	profile := tape12(t)

	plain := item.NewBarcode()
	plain.Text = "LS-1"
	plain.ShowText = false
	captioned := item.NewBarcode()
	captioned.Text = "LS-1"
	captioned.ShowText = true

	frame, err := h.Measure(context.Background(), item.List{plain, captioned}, profile)
	if err != nil {
		t.Fatalf("Measure() error = %v", err)
	}

	pb := frame.Bounds[plain.ID]
	cb := frame.Bounds[captioned.ID]
	if !approx(cb.Height-pb.Height, CaptionHeight) {
		t.Errorf("caption adds %v, want %v", cb.Height-pb.Height, CaptionHeight)
	}
}

func TestHeadless_ContextCanceled(t *testing.T) {
	h := estimateMeasurer()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := h.Measure(ctx, item.List{}, tape12(t)); err != context.Canceled {
		t.Errorf("Measure(canceled ctx) error = %v, want context.Canceled", err)
	}
}

// countingCache records Set calls so tests can observe frame cache hits.
type countingCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newCountingCache() *countingCache {
	return &countingCache{data: make(map[string][]byte)}
}

func (c *countingCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.data[key]
	return data, ok, nil
}

func (c *countingCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	c.sets++
	return nil
}

func (c *countingCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *countingCache) Close() error { return nil }

func (c *countingCache) setCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sets
}

func TestHeadless_FrameCacheHit(t *testing.T) {
	cc := newCountingCache()
	h := NewHeadless(HeadlessOptions{EstimateOnly: true, Cache: cc})
	profile := tape12(t)

	it := item.NewText()
	it.Text = "cached"
	it.FontSize = 12
	items := item.List{it}

	first, err := h.Measure(context.Background(), items, profile)
	if err != nil {
		t.Fatalf("first Measure() error = %v", err)
	}
	setsAfterFirst := cc.setCount()

	second, err := h.Measure(context.Background(), items, profile)
	if err != nil {
		t.Fatalf("second Measure() error = %v", err)
	}

	if cc.setCount() != setsAfterFirst {
		t.Errorf("second measure wrote %d new entries, want cache hit",
			cc.setCount()-setsAfterFirst)
	}
	if first.Bounds[it.ID] != second.Bounds[it.ID] {
		t.Errorf("cached frame bounds = %+v, want %+v", second.Bounds[it.ID], first.Bounds[it.ID])
	}

	// A different media profile keys a different frame.
	other, err := media.Builtin().Get("tape-24")
	if err != nil {
		t.Fatalf("Get(tape-24) error = %v", err)
	}
	if _, err := h.Measure(context.Background(), items, other); err != nil {
		t.Fatalf("Measure(other media) error = %v", err)
	}
	if cc.setCount() == setsAfterFirst {
		t.Error("different media reused the cached frame")
	}
}

func TestHeadless_FileCacheRoundTrip(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	h := NewHeadless(HeadlessOptions{EstimateOnly: true, Cache: fc})
	profile := tape12(t)

	it := item.NewText()
	it.Text = "persisted"
	items := item.List{it}

	first, err := h.Measure(context.Background(), items, profile)
	if err != nil {
		t.Fatalf("first Measure() error = %v", err)
	}
	second, err := h.Measure(context.Background(), items, profile)
	if err != nil {
		t.Fatalf("second Measure() error = %v", err)
	}
	if first.Bounds[it.ID] != second.Bounds[it.ID] {
		t.Errorf("bounds changed across cache round trip: %+v vs %+v",
			first.Bounds[it.ID], second.Bounds[it.ID])
	}
}
