package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/labelsmith/labelsmith/pkg/item"
)

// Layout is the file form of a label: a media profile id plus the item
// list. An empty media id means "use the engine default".
type Layout struct {
	Media string    `json:"media,omitempty"`
	Items item.List `json:"items"`
}

// WriteJSON encodes a layout as JSON and writes it to w.
// The output can be re-imported with [ReadJSON] for round-trip processing.
func WriteJSON(l *Layout, w io.Writer) error {
	out := *l
	if out.Items == nil {
		out.Items = item.List{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a layout to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(l *Layout, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(l, f)
}
