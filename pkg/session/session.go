// Package session stores label editing sessions for the HTTP server.
//
// A session is one proposer conversation's editing state: the item list,
// the selection, and the active media profile. The server loads the
// session into a workspace, runs a batch against it, and writes the
// result back; the store in between is deliberately dumb.
//
// # Backends
//
//   - memory: in-process map for single-instance deployments and tests
//   - redis: shared store for multi-instance deployments
//
// Both expire sessions after a TTL. Expiry is lazy on read; the memory
// store additionally sweeps in the background.
//
// # Usage
//
//	store := session.NewMemoryStore(session.DefaultTTL)
//	defer store.Close()
//
//	sess := session.New("tape-12")
//	if err := store.Put(ctx, sess); err != nil {
//		return err
//	}
//
//	sess, err := store.Get(ctx, sess.ID)
//	if errors.Is(err, session.ErrNotFound) {
//		// expired or never existed
//	}
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/labelsmith/labelsmith/pkg/item"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when a session does not exist or has
	// expired.
	ErrNotFound = errors.New("session not found")

	// ErrClosed is returned when the store has been closed.
	ErrClosed = errors.New("session store closed")
)

// DefaultTTL is how long an idle session survives. Every Put renews it.
const DefaultTTL = 24 * time.Hour

// Session is one conversation's editing state.
type Session struct {
	ID          string    `json:"id" bson:"_id"`
	Media       string    `json:"media" bson:"media"`
	Items       item.List `json:"items" bson:"items"`
	SelectedIDs []string  `json:"selectedIds" bson:"selectedIds"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

// New creates an empty session on the given media profile.
func New(mediaID string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.NewString(),
		Media:     mediaID,
		Items:     item.List{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy. Stores hand out clones so callers can
// mutate freely.
func (s *Session) Clone() *Session {
	c := *s
	c.Items = s.Items.Clone()
	c.SelectedIDs = append([]string(nil), s.SelectedIDs...)
	return &c
}

// Store is the session storage contract.
//
// Get returns ErrNotFound for unknown or expired ids. Put inserts or
// overwrites and renews the TTL. Implementations are safe for concurrent
// use.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Put(ctx context.Context, sess *Session) error
	Delete(ctx context.Context, id string) error
	Close() error
}
