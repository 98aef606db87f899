package normalize

import (
	"context"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/labelsmith/labelsmith/pkg/item"
	"github.com/labelsmith/labelsmith/pkg/render"
)

// nearDuplicateThreshold is the normalized edit distance under which a
// shorter fragment counts as a restatement of an aggregate row.
const nearDuplicateThreshold = 0.25

// nearDuplicateMinLength guards the edit-distance check. Short rows that
// differ by one character ("Halle 2" vs "Halle 3") are distinct content,
// not noise.
const nearDuplicateMinLength = 12

// fallbackPass is the terminal catch-all. It recognizes no structure, so
// it only drops duplicate text fragments and enforces media size floors,
// and it always flags low confidence so the proposer knows placement was
// not verified.
type fallbackPass struct{}

func (p *fallbackPass) Name() string { return "fallback" }

// Match always succeeds; the chain runs this pass last.
func (p *fallbackPass) Match(item.List, render.Frame) bool { return true }

func (p *fallbackPass) Apply(ctx context.Context, st *State) (Outcome, error) {
	out := Outcome{Warnings: []string{WarningLowConfidence}}

	for _, id := range duplicateFragments(st.Editor.Items()) {
		if st.Editor.Remove(id) {
			out.Mutated = true
		}
	}

	minQR := st.Media.MinQRSize()
	for _, qr := range st.Editor.Items().OfType(item.TypeQR) {
		if qr.QRSize() < minQR {
			st.Editor.Mutate(qr.ID, func(it *item.Item) { it.SetQRSize(minQR) })
			out.Mutated = true
		}
	}

	if out.Mutated {
		frame, err := st.Refresh(ctx)
		if err != nil {
			return out, err
		}
		st.Frame = frame
	}
	return out, nil
}

// duplicateFragments returns ids of text items whose content restates a
// longer item: a literal substring or a near-duplicate by edit distance.
// Longest rows win, so the aggregate survives and its fragments go.
func duplicateFragments(items item.List) []string {
	texts := items.OfType(item.TypeText)
	ordered := make(item.List, len(texts))
	copy(ordered, texts)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i].Text) > len(ordered[j].Text)
	})

	var drops []string
	kept := make([]string, 0, len(ordered))
	for _, it := range ordered {
		frag := foldFragment(it.Text)
		if frag == "" {
			continue
		}
		dup := false
		for _, agg := range kept {
			if strings.Contains(agg, frag) || nearDuplicate(frag, agg) {
				dup = true
				break
			}
		}
		if dup {
			drops = append(drops, it.ID)
			continue
		}
		kept = append(kept, frag)
	}
	return drops
}

// foldFragment lowercases and collapses whitespace so comparisons ignore
// formatting noise.
func foldFragment(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func nearDuplicate(frag, agg string) bool {
	if len(agg) < nearDuplicateMinLength {
		return false
	}
	dist := levenshtein.ComputeDistance(frag, agg)
	return float64(dist)/float64(len(agg)) < nearDuplicateThreshold
}
