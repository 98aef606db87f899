package bridge

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/labelsmith/labelsmith/pkg/errors"
)

// Verb identifies one action kind.
type Verb string

// Action verbs.
const (
	VerbAddItem       Verb = "add_item"
	VerbUpdateItem    Verb = "update_item"
	VerbClearItems    Verb = "clear_items"
	VerbSelectItems   Verb = "select_items"
	VerbAlignSelected Verb = "align_selected"
)

// Verbs lists the accepted verbs in a stable order.
func Verbs() []Verb {
	return []Verb{VerbAddItem, VerbUpdateItem, VerbClearItems, VerbSelectItems, VerbAlignSelected}
}

// Action is one edit instruction in a batch. Proposers phrase payload keys
// loosely, so decoding accepts a set of aliases per field and records keys
// it could not place in Unknown instead of dropping them silently.
type Action struct {
	Verb      Verb
	ItemType  string
	Fields    map[string]any
	Target    string
	Targets   []string
	Mode      string
	Reference string

	// Unknown holds top-level payload keys that matched no known field.
	Unknown []string
}

// Top-level payload key aliases.
var (
	verbKeys      = []string{"action", "verb", "op"}
	itemTypeKeys  = []string{"itemType", "item_type", "type"}
	fieldsKeys    = []string{"item", "changes", "values", "fields", "properties", "props"}
	targetKeys    = []string{"itemId", "item_id", "target", "id"}
	targetsKeys   = []string{"itemIds", "item_ids", "targets", "ids"}
	modeKeys      = []string{"mode", "alignment"}
	referenceKeys = []string{"reference", "referenceFrame", "reference_frame"}
)

// UnmarshalJSON decodes one action object, resolving top-level aliases.
func (a *Action) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	taken := make(map[string]bool, len(raw))
	pick := func(keys []string) (json.RawMessage, bool) {
		for _, k := range keys {
			if v, ok := raw[k]; ok {
				taken[k] = true
				return v, true
			}
		}
		return nil, false
	}

	if v, ok := pick(verbKeys); ok {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return fmt.Errorf("action verb: %w", err)
		}
		a.Verb = Verb(s)
	}
	if v, ok := pick(itemTypeKeys); ok {
		if err := json.Unmarshal(v, &a.ItemType); err != nil {
			return fmt.Errorf("action itemType: %w", err)
		}
	}
	if v, ok := pick(fieldsKeys); ok {
		if err := json.Unmarshal(v, &a.Fields); err != nil {
			return fmt.Errorf("action fields: %w", err)
		}
	}
	if v, ok := pick(targetKeys); ok {
		if err := json.Unmarshal(v, &a.Target); err != nil {
			return fmt.Errorf("action target: %w", err)
		}
	}
	if v, ok := pick(targetsKeys); ok {
		// A single string is accepted where a list is expected.
		if err := json.Unmarshal(v, &a.Targets); err != nil {
			var s string
			if err2 := json.Unmarshal(v, &s); err2 != nil {
				return fmt.Errorf("action targets: %w", err)
			}
			a.Targets = []string{s}
		}
	}
	if v, ok := pick(modeKeys); ok {
		if err := json.Unmarshal(v, &a.Mode); err != nil {
			return fmt.Errorf("action mode: %w", err)
		}
	}
	if v, ok := pick(referenceKeys); ok {
		if err := json.Unmarshal(v, &a.Reference); err != nil {
			return fmt.Errorf("action reference: %w", err)
		}
	}

	a.Unknown = nil
	for k := range raw {
		if !taken[k] {
			a.Unknown = append(a.Unknown, k)
		}
	}
	sort.Strings(a.Unknown)
	return nil
}

// Batch is a decoded action batch plus its run options. The wire form is
// either a bare JSON array of actions or an envelope object:
//
//	{"actions": [...], "forceRebuild": true, "media": "tape-24"}
type Batch struct {
	Actions      []Action `json:"actions"`
	ForceRebuild *bool    `json:"forceRebuild,omitempty"`
	Media        string   `json:"media,omitempty"`
}

// ParseBatch decodes a batch from JSON. Besides the two documented forms
// it tolerates a single bare action object.
func ParseBatch(data []byte) (Batch, error) {
	var batch Batch
	if err := json.Unmarshal(data, &batch); err == nil {
		if len(batch.Actions) > 0 || batch.ForceRebuild != nil || batch.Media != "" {
			return batch, nil
		}
	}

	var actions []Action
	if err := json.Unmarshal(data, &actions); err == nil {
		return Batch{Actions: actions}, nil
	}

	var single Action
	if err := json.Unmarshal(data, &single); err == nil && single.Verb != "" {
		return Batch{Actions: []Action{single}}, nil
	}

	return Batch{}, errors.New(errors.ErrCodeInvalidPayload, "action batch is neither an action array nor a batch envelope")
}
