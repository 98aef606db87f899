package render

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/labelsmith/labelsmith/pkg/item"
	"github.com/labelsmith/labelsmith/pkg/media"
	"github.com/labelsmith/labelsmith/pkg/observability"
)

// ErrClosed is returned by tickets when the scheduler shuts down before
// their pass could run.
var ErrClosed = errors.New("render: scheduler closed")

// Snapshotter returns the current items and media for a measurement pass.
// The returned list must be a copy the scheduler may read without locking.
type Snapshotter func() (item.List, media.Profile)

// Ticket is the promise for one render request. It resolves once the first
// pass that began at or after the request completes.
type Ticket struct {
	done  chan struct{}
	frame Frame
	err   error
}

// Wait blocks until the ticket resolves or the context is done.
func (t *Ticket) Wait(ctx context.Context) (Frame, error) {
	select {
	case <-ctx.Done():
		return Frame{}, ctx.Err()
	case <-t.done:
		return t.frame, t.err
	}
}

// resolve completes the ticket. Must be called at most once.
func (t *Ticket) resolve(frame Frame, err error) {
	t.frame = frame
	t.err = err
	close(t.done)
}

// Scheduler runs measurement passes asynchronously with coalescing.
//
// The machine has two states: idle, or busy with at most one queued
// follow-up pass. A request in the idle state starts a pass immediately.
// Requests during a pass all attach to the single queued pass, which starts
// when the running one finishes. This bounds outstanding work at one pass
// in flight plus one pending regardless of request rate.
type Scheduler struct {
	measurer Measurer
	snapshot Snapshotter
	logger   *log.Logger

	passCtx context.Context
	cancel  context.CancelFunc

	mu      sync.Mutex
	busy    bool
	queued  bool
	current []*Ticket
	next    []*Ticket
	last    Frame
	hasLast bool
	closed  bool
}

// NewScheduler creates a scheduler over the given measurer. The snapshot
// func is called at the start of every pass; it must return a copy that no
// other goroutine mutates.
func NewScheduler(m Measurer, snapshot Snapshotter, logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = log.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		measurer: m,
		snapshot: snapshot,
		logger:   logger,
		passCtx:  ctx,
		cancel:   cancel,
	}
}

// Request asks for a fresh measurement and returns the ticket that resolves
// with it. Concurrent requests share passes; every ticket still resolves.
func (s *Scheduler) Request() *Ticket {
	t := &Ticket{done: make(chan struct{})}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		t.resolve(Frame{}, ErrClosed)
		return t
	}

	if !s.busy {
		s.busy = true
		s.current = []*Ticket{t}
		go s.run()
		return t
	}

	// A pass is in flight; coalesce into the single queued follow-up.
	s.queued = true
	s.next = append(s.next, t)
	return t
}

// Snapshot returns the last completed frame, if any pass has finished.
func (s *Scheduler) Snapshot() (Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasLast {
		return Frame{}, false
	}
	return s.last.Clone(), true
}

// Close cancels the in-flight pass and resolves all pending tickets with
// ErrClosed. Requests after Close resolve immediately with ErrClosed.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	pending := s.next
	s.next = nil
	s.queued = false
	s.mu.Unlock()

	s.cancel()
	for _, t := range pending {
		t.resolve(Frame{}, ErrClosed)
	}
}

// run executes passes until no queued work remains. It owns the busy flag:
// exactly one run loop exists while busy is true.
func (s *Scheduler) run() {
	for {
		items, profile := s.snapshot()

		start := time.Now()
		observability.Render().OnRenderStart(s.passCtx, len(items))
		frame, err := s.measurer.Measure(s.passCtx, items, profile)
		observability.Render().OnRenderComplete(s.passCtx, len(items), time.Since(start), err)

		if err != nil {
			s.logger.Debug("measurement pass failed", "items", len(items), "err", err)
		}

		s.mu.Lock()
		if err == nil {
			s.last = frame
			s.hasLast = true
		}
		waiters := s.current
		s.current = nil

		if s.queued && !s.closed {
			// Promote the queued pass and keep running.
			s.queued = false
			s.current = s.next
			s.next = nil
			s.mu.Unlock()
			for _, t := range waiters {
				t.resolve(frame, err)
			}
			continue
		}

		closedNow := s.closed
		leftover := s.next
		s.next = nil
		s.queued = false
		s.busy = false
		s.mu.Unlock()

		for _, t := range waiters {
			t.resolve(frame, err)
		}
		if closedNow {
			for _, t := range leftover {
				t.resolve(Frame{}, ErrClosed)
			}
		}
		return
	}
}
