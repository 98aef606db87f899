// Package io provides JSON import and export for label layout files.
//
// # Overview
//
// A layout file carries a media profile id and an ordered item list. The
// format is designed for:
//
//   - Hand-authored layouts fed to the CLI run and preview commands
//   - Integration with external tools that produce or consume layouts
//   - Round-trip preservation: import, edit, export, and re-import identically
//
// # JSON Format
//
// The format is a single object with a "media" id and an "items" array:
//
//	{
//	  "media": "tape-12",
//	  "items": [
//	    {"type": "text", "text": "Herbstfest", "fontSize": 28, "textBold": true},
//	    {"type": "qr", "text": "https://example.com/evt/42", "size": 64}
//	  ]
//	}
//
// # Item Fields
//
// Required:
//   - type: "text", "qr", "barcode", "shape", "image" or "icon"
//
// Optional:
//   - id: Unique string identifier (generated if omitted)
//   - positionMode: "flow" or "absolute" (defaults to "flow")
//   - xOffset, yOffset, rotation: placement in device units / degrees
//   - The type-specific fields of [item.Item]; zero sizes are filled with
//     the creation defaults so hand-written files stay terse
//
// # Import
//
// Use [ImportJSON] to read a layout from a file path, or [ReadJSON] to read
// from any io.Reader:
//
//	l, err := io.ImportJSON("label.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Both functions validate the structure: item types must be known, ids must
// be unique, and a present media id must be well-formed. Errors are wrapped
// with context about which item caused the problem.
//
// # Export
//
// Use [ExportJSON] to write a layout to a file, or [WriteJSON] to write to
// any io.Writer:
//
//	err := io.ExportJSON(l, "output.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// The export includes every item field that differs from its zero value,
// including generated ids, so a re-import yields the identical layout.
//
// # Concurrency
//
// All functions in this package are safe to call concurrently with other
// readers of the same layout, but not with concurrent modifications. The
// [ReadJSON] and [ImportJSON] functions return independent layouts that can
// be modified freely after import.
package io
