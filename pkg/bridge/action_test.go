package bridge

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestActionUnmarshal_Aliases(t *testing.T) {
	data := []byte(`{
		"verb": "update_item",
		"itemId": "item-2",
		"values": {"content": "hello"},
		"mystery": 1,
		"extra": true
	}`)

	var a Action
	if err := json.Unmarshal(data, &a); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if a.Verb != VerbUpdateItem {
		t.Errorf("Verb = %q, want %q", a.Verb, VerbUpdateItem)
	}
	if a.Target != "item-2" {
		t.Errorf("Target = %q, want %q", a.Target, "item-2")
	}
	if got := a.Fields["content"]; got != "hello" {
		t.Errorf("Fields[content] = %v, want hello", got)
	}
	if want := []string{"extra", "mystery"}; !reflect.DeepEqual(a.Unknown, want) {
		t.Errorf("Unknown = %v, want %v", a.Unknown, want)
	}
}

func TestActionUnmarshal_SingleTargetAsList(t *testing.T) {
	var a Action
	if err := json.Unmarshal([]byte(`{"action": "select_items", "itemIds": "last"}`), &a); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if want := []string{"last"}; !reflect.DeepEqual(a.Targets, want) {
		t.Errorf("Targets = %v, want %v", a.Targets, want)
	}
}

func TestParseBatch(t *testing.T) {
	tests := []struct {
		name        string
		data        string
		wantActions int
		wantRebuild bool
		wantMedia   string
		wantErr     bool
	}{
		{
			name:        "envelope",
			data:        `{"actions": [{"action": "clear_items"}], "forceRebuild": true, "media": "tape-24"}`,
			wantActions: 1,
			wantRebuild: true,
			wantMedia:   "tape-24",
		},
		{
			name:        "bare array",
			data:        `[{"action": "add_item", "itemType": "text"}, {"action": "select_items"}]`,
			wantActions: 2,
		},
		{
			name:        "single action object",
			data:        `{"action": "clear_items"}`,
			wantActions: 1,
		},
		{
			name:    "garbage",
			data:    `"just a string"`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch, err := ParseBatch([]byte(tt.data))
			if tt.wantErr {
				if err == nil {
					t.Fatal("ParseBatch() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseBatch() error = %v", err)
			}
			if len(batch.Actions) != tt.wantActions {
				t.Errorf("len(Actions) = %d, want %d", len(batch.Actions), tt.wantActions)
			}
			if tt.wantRebuild && (batch.ForceRebuild == nil || !*batch.ForceRebuild) {
				t.Error("ForceRebuild not decoded")
			}
			if batch.Media != tt.wantMedia {
				t.Errorf("Media = %q, want %q", batch.Media, tt.wantMedia)
			}
		})
	}
}

func TestInferRebuild(t *testing.T) {
	tests := []struct {
		name  string
		verbs []Verb
		want  bool
	}{
		{name: "empty", verbs: nil, want: false},
		{name: "clear then adds", verbs: []Verb{VerbClearItems, VerbAddItem, VerbAddItem}, want: true},
		{name: "clear then updates", verbs: []Verb{VerbClearItems, VerbAddItem, VerbUpdateItem}, want: true},
		{name: "bare clear", verbs: []Verb{VerbClearItems}, want: true},
		{name: "no leading clear", verbs: []Verb{VerbAddItem, VerbAddItem}, want: false},
		{name: "select breaks it", verbs: []Verb{VerbClearItems, VerbAddItem, VerbSelectItems}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actions := make([]Action, len(tt.verbs))
			for i, v := range tt.verbs {
				actions[i] = Action{Verb: v}
			}
			if got := inferRebuild(actions); got != tt.want {
				t.Errorf("inferRebuild() = %v, want %v", got, tt.want)
			}
		})
	}
}
