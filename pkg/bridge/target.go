package bridge

import (
	"fmt"

	"github.com/labelsmith/labelsmith/pkg/editor"
)

// Symbolic target references.
const (
	targetLast     = "last"
	targetFirst    = "first"
	targetSelected = "selected"
)

// batchState is the per-batch symbol table: ids minted during the batch,
// their virtual item-<n> aliases, and the batch-local selection snapshot.
// It is discarded when the batch ends.
type batchState struct {
	added    []string
	virtual  map[string]string
	selected []string
}

func newBatchState() *batchState {
	return &batchState{virtual: make(map[string]string)}
}

// note records a freshly created item and mints its virtual id. Virtual
// ids count from one in creation order.
func (b *batchState) note(id string) {
	b.added = append(b.added, id)
	b.virtual[fmt.Sprintf("item-%d", len(b.added))] = id
}

// reset drops all batch bookkeeping. clear_items starts id numbering over.
func (b *batchState) reset() {
	b.added = nil
	b.virtual = make(map[string]string)
	b.selected = nil
}

func (b *batchState) lastAdded() (string, bool) {
	if len(b.added) == 0 {
		return "", false
	}
	return b.added[len(b.added)-1], true
}

// resolveTarget maps one target reference to concrete item ids.
//
// Resolution order: the symbolic names, then virtual ids minted this
// batch, then live item ids. An empty reference means "last". "selected"
// prefers the batch's own selection snapshot when the live read comes back
// empty, because the live surface may lag a cycle behind a select_items
// that just ran.
func resolveTarget(ed editor.Editor, batch *batchState, ref string) ([]string, bool) {
	switch ref {
	case targetLast, "":
		if id, ok := batch.lastAdded(); ok {
			return []string{id}, true
		}
		items := ed.Items()
		if len(items) > 0 {
			return []string{items[len(items)-1].ID}, true
		}
		return nil, false
	case targetFirst:
		items := ed.Items()
		if len(items) > 0 {
			return []string{items[0].ID}, true
		}
		return nil, false
	case targetSelected:
		live := ed.SelectedItemIDs()
		if len(live) == 0 && len(batch.selected) > 0 {
			live = batch.selected
		}
		if len(live) == 0 {
			return nil, false
		}
		return live, true
	}

	if id, ok := batch.virtual[ref]; ok {
		return []string{id}, true
	}
	if _, ok := ed.Item(ref); ok {
		return []string{ref}, true
	}
	return nil, false
}
