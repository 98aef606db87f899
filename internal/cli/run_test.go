package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/labelsmith/labelsmith/pkg/errors"
	layoutio "github.com/labelsmith/labelsmith/pkg/io"
	"github.com/labelsmith/labelsmith/pkg/media"
)

// execRun runs the run command against a batch file and returns the
// resulting layout.
func execRun(t *testing.T, batchJSON string, extraArgs ...string) *layoutio.Layout {
	t.Helper()

	dir := t.TempDir()
	actions := filepath.Join(dir, "actions.json")
	if err := os.WriteFile(actions, []byte(batchJSON), 0o644); err != nil {
		t.Fatalf("write actions: %v", err)
	}
	out := filepath.Join(dir, "layout.json")

	c := New(io.Discard, LogWarn)
	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	args := append([]string{"run", actions, "--output", out, "--estimate", "--no-cache"}, extraArgs...)
	root.SetArgs(args)

	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("run command: %v", err)
	}

	l, err := layoutio.ImportJSON(out)
	if err != nil {
		t.Fatalf("read output layout: %v", err)
	}
	return l
}

func TestRunCommandWritesLayout(t *testing.T) {
	l := execRun(t, `[{"action":"add_item","itemType":"text","item":{"content":"Shelf A"}}]`)

	if len(l.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(l.Items))
	}
	if l.Items[0].Text != "Shelf A" {
		t.Errorf("item text = %q, want %q", l.Items[0].Text, "Shelf A")
	}
	if l.Media != media.DefaultID {
		t.Errorf("media = %q, want default %q", l.Media, media.DefaultID)
	}
}

func TestRunCommandMediaFlag(t *testing.T) {
	l := execRun(t, `[{"action":"add_item","itemType":"text","item":{"content":"Shelf A"}}]`, "--media", "tape-24")

	if l.Media != "tape-24" {
		t.Errorf("media = %q, want tape-24", l.Media)
	}
}

func TestRunCommandBatchMedia(t *testing.T) {
	l := execRun(t, `{"actions":[{"action":"add_item","itemType":"text","item":{"content":"A"}}],"media":"tape-9"}`)

	if l.Media != "tape-9" {
		t.Errorf("media = %q, want tape-9", l.Media)
	}
}

func TestRunCommandUnknownMedia(t *testing.T) {
	dir := t.TempDir()
	actions := filepath.Join(dir, "actions.json")
	if err := os.WriteFile(actions, []byte(`[]`), 0o644); err != nil {
		t.Fatalf("write actions: %v", err)
	}

	c := New(io.Discard, LogWarn)
	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"run", actions, "--output", filepath.Join(dir, "out.json"), "--estimate", "--no-cache", "--media", "tape-999"})

	err := root.ExecuteContext(context.Background())
	if err == nil {
		t.Fatal("expected error for unknown media")
	}
	if code := errors.GetCode(err); code != errors.ErrCodeInvalidMedia {
		t.Errorf("error code = %v, want %v", code, errors.ErrCodeInvalidMedia)
	}
}

func TestRunCommandMissingBatchFile(t *testing.T) {
	c := New(io.Discard, LogWarn)
	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"run", "/nonexistent/actions.json", "--output", filepath.Join(t.TempDir(), "out.json")})

	if err := root.ExecuteContext(context.Background()); err == nil {
		t.Fatal("expected error for missing batch file")
	}
}

func TestRunCommandLayoutRoundTrip(t *testing.T) {
	dir := t.TempDir()

	first := execRun(t, `[{"action":"add_item","itemType":"text","item":{"content":"First"}}]`)
	layoutPath := filepath.Join(dir, "layout.json")
	if err := layoutio.ExportJSON(first, layoutPath); err != nil {
		t.Fatalf("export layout: %v", err)
	}

	actions := filepath.Join(dir, "actions.json")
	if err := os.WriteFile(actions, []byte(`[{"action":"add_item","itemType":"text","item":{"content":"Second"}}]`), 0o644); err != nil {
		t.Fatalf("write actions: %v", err)
	}
	out := filepath.Join(dir, "out.json")

	c := New(io.Discard, LogWarn)
	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"run", actions, "--layout", layoutPath, "--output", out, "--estimate", "--no-cache"})

	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("run command: %v", err)
	}

	l, err := layoutio.ImportJSON(out)
	if err != nil {
		t.Fatalf("read output layout: %v", err)
	}
	if len(l.Items) != 2 {
		t.Errorf("got %d items after second batch, want 2", len(l.Items))
	}
}
