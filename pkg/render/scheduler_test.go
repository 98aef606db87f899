package render

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/labelsmith/labelsmith/pkg/geom"
	"github.com/labelsmith/labelsmith/pkg/item"
	"github.com/labelsmith/labelsmith/pkg/media"
)

// gateMeasurer blocks each pass until released, and numbers passes so
// tests can tell which pass a ticket resolved with.
type gateMeasurer struct {
	mu      sync.Mutex
	passes  int
	entered chan struct{}
	release chan struct{}
}

func newGateMeasurer() *gateMeasurer {
	return &gateMeasurer{
		entered: make(chan struct{}, 16),
		release: make(chan struct{}),
	}
}

func (m *gateMeasurer) Measure(ctx context.Context, items item.List, profile media.Profile) (Frame, error) {
	m.mu.Lock()
	m.passes++
	n := m.passes
	m.mu.Unlock()

	m.entered <- struct{}{}
	<-m.release

	return Frame{
		Canvas: geom.Size{Width: 100, Height: 50},
		Bounds: map[string]geom.Rect{"pass": {X: float64(n)}},
	}, nil
}

func (m *gateMeasurer) passCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.passes
}

func testSnapshot() (item.List, media.Profile) {
	return item.List{}, media.Builtin().Default()
}

func waitTicket(t *testing.T, ticket *Ticket) Frame {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	frame, err := ticket.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	return frame
}

func TestScheduler_CoalescesConcurrentRequests(t *testing.T) {
	m := newGateMeasurer()
	s := NewScheduler(m, testSnapshot, nil)
	defer s.Close()

	t1 := s.Request()
	<-m.entered // pass 1 in flight

	// These arrive while busy and must share one follow-up pass.
	t2 := s.Request()
	t3 := s.Request()

	m.release <- struct{}{} // finish pass 1
	f1 := waitTicket(t, t1)

	<-m.entered // pass 2 in flight
	m.release <- struct{}{}
	f2 := waitTicket(t, t2)
	f3 := waitTicket(t, t3)

	if got := m.passCount(); got != 2 {
		t.Errorf("passes = %d, want 2 (coalesced)", got)
	}
	if f1.Bounds["pass"].X != 1 {
		t.Errorf("first ticket resolved with pass %v, want 1", f1.Bounds["pass"].X)
	}
	if f2.Bounds["pass"].X != 2 || f3.Bounds["pass"].X != 2 {
		t.Errorf("queued tickets resolved with passes %v and %v, want 2 and 2",
			f2.Bounds["pass"].X, f3.Bounds["pass"].X)
	}
}

func TestScheduler_SnapshotReturnsLastFrame(t *testing.T) {
	m := newGateMeasurer()
	s := NewScheduler(m, testSnapshot, nil)
	defer s.Close()

	if _, ok := s.Snapshot(); ok {
		t.Error("Snapshot() before any pass reported a frame")
	}

	ticket := s.Request()
	<-m.entered
	m.release <- struct{}{}
	waitTicket(t, ticket)

	frame, ok := s.Snapshot()
	if !ok {
		t.Fatal("Snapshot() after pass reported no frame")
	}
	if frame.Bounds["pass"].X != 1 {
		t.Errorf("Snapshot() pass = %v, want 1", frame.Bounds["pass"].X)
	}

	// The snapshot is a copy; mutating it must not leak back.
	frame.Bounds["pass"] = geom.Rect{X: 99}
	again, _ := s.Snapshot()
	if again.Bounds["pass"].X != 1 {
		t.Error("Snapshot() shares bounds map with caller copies")
	}
}

func TestTicket_WaitHonorsContext(t *testing.T) {
	m := newGateMeasurer()
	s := NewScheduler(m, testSnapshot, nil)
	defer s.Close()

	ticket := s.Request()
	<-m.entered // keep the pass blocked

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ticket.Wait(ctx); err != context.Canceled {
		t.Errorf("Wait(canceled ctx) error = %v, want context.Canceled", err)
	}

	// The ticket itself still resolves once the pass finishes.
	m.release <- struct{}{}
	waitTicket(t, ticket)
}

func TestScheduler_CloseResolvesQueuedTickets(t *testing.T) {
	m := newGateMeasurer()
	s := NewScheduler(m, testSnapshot, nil)

	t1 := s.Request()
	<-m.entered
	t2 := s.Request() // queued behind the blocked pass

	s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := t2.Wait(ctx); err != ErrClosed {
		t.Errorf("queued ticket error = %v, want ErrClosed", err)
	}

	// The in-flight pass still completes and resolves its ticket.
	m.release <- struct{}{}
	if _, err := t1.Wait(ctx); err != nil {
		t.Errorf("in-flight ticket error = %v, want nil", err)
	}
}

func TestScheduler_RequestAfterClose(t *testing.T) {
	m := newGateMeasurer()
	s := NewScheduler(m, testSnapshot, nil)
	s.Close()

	ticket := s.Request()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := ticket.Wait(ctx); err != ErrClosed {
		t.Errorf("Request() after Close error = %v, want ErrClosed", err)
	}
}
