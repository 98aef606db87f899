package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/labelsmith/labelsmith/pkg/item"
)

func TestNewSessionDefaults(t *testing.T) {
	sess := New("tape-12")

	if sess.ID == "" {
		t.Error("ID empty")
	}
	if sess.Media != "tape-12" {
		t.Errorf("Media = %q, want tape-12", sess.Media)
	}
	if sess.Items == nil || len(sess.Items) != 0 {
		t.Errorf("Items = %v, want empty non-nil list", sess.Items)
	}
	if sess.CreatedAt.IsZero() || sess.UpdatedAt.IsZero() {
		t.Error("timestamps not set")
	}

	other := New("tape-12")
	if other.ID == sess.ID {
		t.Error("ids not unique")
	}
}

func TestSessionCloneIsDeep(t *testing.T) {
	sess := New("tape-12")
	it := item.NewText()
	it.Text = "original"
	sess.Items = item.List{it}
	sess.SelectedIDs = []string{it.ID}

	c := sess.Clone()
	c.Items[0].Text = "changed"
	c.SelectedIDs[0] = "other"

	if sess.Items[0].Text != "original" {
		t.Error("clone shares item storage")
	}
	if sess.SelectedIDs[0] != it.ID {
		t.Error("clone shares selection storage")
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	t.Cleanup(func() { store.Close() })
	ctx := context.Background()

	sess := New("tape-18")
	it := item.NewQR()
	it.Text = "data"
	sess.Items = item.List{it}

	if err := store.Put(ctx, sess); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	got, err := store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.Media != "tape-18" || len(got.Items) != 1 || got.Items[0].Text != "data" {
		t.Errorf("got %+v, want stored session back", got)
	}

	// The store hands out clones.
	got.Items[0].Text = "mutated"
	again, err := store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("second Get error: %v", err)
	}
	if again.Items[0].Text != "data" {
		t.Error("store leaked internal item storage")
	}
}

func TestMemoryStoreGetUnknown(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	t.Cleanup(func() { store.Close() })

	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore(time.Millisecond)
	t.Cleanup(func() { store.Close() })
	ctx := context.Background()

	sess := New("tape-12")
	if err := store.Put(ctx, sess); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	time.Sleep(5 * time.Millisecond)
	if _, err := store.Get(ctx, sess.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after ttl = %v, want ErrNotFound", err)
	}
	if store.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after lazy expiry", store.Len())
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	t.Cleanup(func() { store.Close() })
	ctx := context.Background()

	sess := New("tape-12")
	if err := store.Put(ctx, sess); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, err := store.Get(ctx, sess.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}

	// Deleting twice is fine.
	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Errorf("second Delete error: %v", err)
	}
}

func TestMemoryStoreClosed(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	store.Close()

	if err := store.Put(context.Background(), New("tape-12")); !errors.Is(err, ErrClosed) {
		t.Errorf("Put after close = %v, want ErrClosed", err)
	}
	if _, err := store.Get(context.Background(), "any"); !errors.Is(err, ErrClosed) {
		t.Errorf("Get after close = %v, want ErrClosed", err)
	}

	// Closing twice is fine.
	if err := store.Close(); err != nil {
		t.Errorf("second Close error: %v", err)
	}
}

func TestMemoryStorePutRenewsTTL(t *testing.T) {
	store := NewMemoryStore(400 * time.Millisecond)
	t.Cleanup(func() { store.Close() })
	ctx := context.Background()

	sess := New("tape-12")
	if err := store.Put(ctx, sess); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	time.Sleep(250 * time.Millisecond)
	if err := store.Put(ctx, sess); err != nil {
		t.Fatalf("renewing Put error: %v", err)
	}
	time.Sleep(250 * time.Millisecond)

	if _, err := store.Get(ctx, sess.ID); err != nil {
		t.Errorf("Get after renewal = %v, want session alive", err)
	}
}
