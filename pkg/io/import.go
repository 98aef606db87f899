package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/labelsmith/labelsmith/pkg/errors"
	"github.com/labelsmith/labelsmith/pkg/item"
)

// ReadJSON decodes a JSON layout from r.
//
// The input must be a JSON object with an "items" array and an optional
// "media" id:
//
//	{
//	  "media": "tape-12",
//	  "items": [{"type": "text", "text": "Hello"}]
//	}
//
// Each item must have a known "type". Missing ids are generated, a missing
// positionMode defaults to flow, and zero-valued type sizes (font size, qr
// size, barcode height, shape extent) are filled with the creation
// defaults, so hand-written files can stay minimal.
//
// ReadJSON returns an error if:
//   - The JSON is malformed or invalid
//   - An item has an unknown type
//   - Two items share an id
//   - The media id is present but not well-formed
//
// Errors are wrapped with context describing which item caused the
// problem. The returned layout is independent of r and can be modified
// safely after ReadJSON returns. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Layout, error) {
	var l Layout
	if err := json.NewDecoder(r).Decode(&l); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	if l.Media != "" {
		if err := errors.ValidateMediaID(l.Media); err != nil {
			return nil, fmt.Errorf("media: %w", err)
		}
	}
	if l.Items == nil {
		l.Items = item.List{}
	}

	seen := make(map[string]bool, len(l.Items))
	for i, it := range l.Items {
		if _, err := item.ParseType(string(it.Type)); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		if it.ID == "" {
			it.ID = uuid.NewString()
		}
		if seen[it.ID] {
			return nil, fmt.Errorf("item %d: %w", i,
				errors.New(errors.ErrCodeInvalidPayload, "duplicate item id %q", it.ID))
		}
		seen[it.ID] = true

		if it.PositionMode == "" {
			it.PositionMode = item.PositionFlow
		}
		fillDefaults(it)
	}

	return &l, nil
}

// fillDefaults replaces zero-valued type sizes with creation defaults.
func fillDefaults(it *item.Item) {
	switch it.Type {
	case item.TypeText:
		if it.FontSize <= 0 {
			it.FontSize = item.DefaultFontSize
		}
		if it.FontFamily == "" {
			it.FontFamily = item.DefaultFontFamily
		}
		if it.TextAlign == "" {
			it.TextAlign = item.AlignLeft
		}
	case item.TypeQR:
		if it.Size <= 0 {
			it.SetQRSize(item.DefaultQRSize)
		}
	case item.TypeBarcode:
		if it.Height <= 0 {
			it.Height = item.DefaultBarcodeHeight
		}
		if it.Protocol == "" {
			it.Protocol = item.ProtocolCode128
		}
	case item.TypeShape:
		if it.ShapeType == "" {
			it.ShapeType = item.ShapeRect
		}
		if it.Width <= 0 {
			it.Width = item.DefaultShapeSize
		}
		if it.Height <= 0 && it.ShapeType != item.ShapeLine {
			it.Height = item.DefaultShapeSize
		}
		if it.LineWidth <= 0 {
			it.LineWidth = item.DefaultLineWidth
		}
	case item.TypeImage:
		if it.Width <= 0 {
			it.Width = item.DefaultImageSize
		}
		if it.Height <= 0 {
			it.Height = item.DefaultImageSize
		}
	case item.TypeIcon:
		if it.Size <= 0 {
			it.Size = item.DefaultIconSize
		}
		if it.Icon == "" {
			it.Icon = item.DefaultIcon
		}
	}
}

// ImportJSON reads a JSON file at path and returns the decoded layout.
//
// ImportJSON opens the file, decodes it using [ReadJSON], and closes the
// file. If the file cannot be opened, or if decoding fails, ImportJSON
// returns an error describing the failure. The error wraps the underlying
// cause with the file path for context.
//
// ImportJSON returns the same validation errors as [ReadJSON] for
// malformed layouts.
func ImportJSON(path string) (*Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
