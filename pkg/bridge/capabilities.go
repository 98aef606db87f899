package bridge

import (
	"github.com/labelsmith/labelsmith/pkg/item"
)

// Capabilities describes the accepted action vocabulary. Proposers use it
// to construct prompts that stay inside what the bridge understands.
type Capabilities struct {
	Verbs          []string            `json:"verbs"`
	ItemProperties map[string][]string `json:"itemProperties"`
	Targets        []string            `json:"targets"`
	Notes          []string            `json:"notes"`
}

// ActionCapabilities returns the verbs, per-type canonical fields, target
// forms, and usage notes.
func ActionCapabilities() Capabilities {
	verbs := make([]string, 0, len(Verbs()))
	for _, v := range Verbs() {
		verbs = append(verbs, string(v))
	}

	props := make(map[string][]string, len(item.Types()))
	for _, t := range item.Types() {
		props[string(t)] = CanonicalFields(t)
	}

	return Capabilities{
		Verbs:          verbs,
		ItemProperties: props,
		Targets:        []string{"last", "first", "selected", "item-<n>", "<item id>"},
		Notes: []string{
			"Payload keys accept snake_case aliases; content and data both mean text.",
			"A qr item is square: size is authoritative, and width or height updates size.",
			"item-<n> refers to the nth item added in this batch, counting from 1.",
			"A batch starting with clear_items followed only by add_item and update_item runs as a rebuild.",
		},
	}
}
