package normalize

import (
	"context"
	"testing"

	"github.com/labelsmith/labelsmith/pkg/item"
)

func plainText(content string) *item.Item {
	it := item.NewText()
	it.Text = content
	return it
}

func TestFallbackAlwaysMatches(t *testing.T) {
	p := &fallbackPass{}
	st := newTestState(t, "tape-12", plainText("anything"))
	if !p.Match(st.Editor.Items(), st.Frame) {
		t.Error("Match() = false, want true")
	}
}

func TestFallbackAlwaysFlagsLowConfidence(t *testing.T) {
	st := newTestState(t, "tape-12", plainText("just one row"))

	p := &fallbackPass{}
	out, err := p.Apply(context.Background(), st)
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if !hasWarning(out.Warnings, WarningLowConfidence) {
		t.Errorf("warnings = %v, want %s", out.Warnings, WarningLowConfidence)
	}
	if out.Resolved {
		t.Error("Resolved = true, fallback never verifies placement")
	}
	if out.Mutated {
		t.Error("Mutated = true for a single distinct row")
	}
}

func TestFallbackDedupsSubstringFragments(t *testing.T) {
	agg := plainText("Herbstfest Eingang Halle 2\nEinlass ab 18:00")
	st := newTestState(t, "tape-12",
		agg,
		plainText("Einlass ab 18:00"),
		plainText("Herbstfest Eingang Halle 2"),
	)

	p := &fallbackPass{}
	out, err := p.Apply(context.Background(), st)
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if !out.Mutated {
		t.Error("Mutated = false, want true")
	}

	texts := st.Editor.Items().OfType(item.TypeText)
	if len(texts) != 1 {
		t.Fatalf("len(texts) = %d, want 1", len(texts))
	}
	if texts[0].ID != agg.ID {
		t.Errorf("kept %q, want the aggregate", texts[0].Text)
	}
}

func TestFallbackDedupsNearDuplicates(t *testing.T) {
	st := newTestState(t, "tape-12",
		plainText("Kontakt: +49 170 1234567"),
		plainText("Kontakt +49 170 1234567"),
	)

	p := &fallbackPass{}
	if _, err := p.Apply(context.Background(), st); err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if got := len(st.Editor.Items().OfType(item.TypeText)); got != 1 {
		t.Errorf("len(texts) = %d, want 1", got)
	}
}

func TestFallbackKeepsDistinctRows(t *testing.T) {
	st := newTestState(t, "tape-12",
		plainText("Zutritt nur mit Ausweis"),
		plainText("Notausgang freihalten"),
	)

	p := &fallbackPass{}
	out, err := p.Apply(context.Background(), st)
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if out.Mutated {
		t.Error("Mutated = true for distinct rows")
	}
	if got := len(st.Editor.Items().OfType(item.TypeText)); got != 2 {
		t.Errorf("len(texts) = %d, want 2", got)
	}
}

func TestFallbackRaisesQRFloor(t *testing.T) {
	qr := item.NewQR()
	qr.SetQRSize(10)
	st := newTestState(t, "tape-12", plainText("scan me"), qr)

	p := &fallbackPass{}
	out, err := p.Apply(context.Background(), st)
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if !out.Mutated {
		t.Error("Mutated = false, want true")
	}

	got, ok := st.Editor.Item(qr.ID)
	if !ok {
		t.Fatalf("qr %s gone", qr.ID)
	}
	if want := st.Media.MinQRSize(); got.QRSize() != want {
		t.Errorf("qr size = %.0f, want floor %.0f", got.QRSize(), want)
	}
}

func TestDuplicateFragments(t *testing.T) {
	tests := []struct {
		name  string
		texts []string
		drops int
	}{
		{"identical pair", []string{"Halle 2", "Halle 2"}, 1},
		{"case and spacing fold", []string{"Halle  2", "halle 2"}, 1},
		{"substring", []string{"Eingang Halle 2", "Halle 2"}, 1},
		{"distinct", []string{"Halle 2", "Halle 3"}, 0},
		{"empty rows kept", []string{"", "Halle 2", ""}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := make(item.List, 0, len(tt.texts))
			for _, s := range tt.texts {
				items = append(items, plainText(s))
			}
			if got := duplicateFragments(items); len(got) != tt.drops {
				t.Errorf("duplicateFragments() dropped %d, want %d", len(got), tt.drops)
			}
		})
	}
}
