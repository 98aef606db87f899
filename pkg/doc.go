// Package pkg provides the core libraries for labelsmith label editing.
//
// # Overview
//
// Labelsmith turns JSON action batches into printable thermal-tape label
// layouts. Every edit runs through a deterministic repair engine that
// measures items, resolves overlaps, and keeps the layout inside the
// physical limits of the chosen media. The pkg directory is organized
// into four main areas:
//
//  1. [bridge] - Action vocabulary (parse, resolve, and apply batches)
//  2. [editor], [normalize], [render] - The repair engine
//  3. [media], [item], [geom] - The layout domain model
//  4. [pipeline], [session], [library], [cache] - Orchestration and storage
//
// # Architecture
//
// The typical data flow through labelsmith:
//
//	JSON action batch
//	         ↓
//	    [bridge] package (parse actions, resolve targets)
//	         ↓
//	    [editor] package (apply edits to the workspace)
//	         ↓
//	    [render] package (measure item bounds per media profile)
//	         ↓
//	    [normalize] package (repair overlaps and ordering)
//	         ↓
//	    PNG preview / layout JSON output
//
// # Quick Start
//
// Apply a batch to an empty layout and render a preview:
//
//	import (
//	    "context"
//	    "github.com/labelsmith/labelsmith/pkg/bridge"
//	    "github.com/labelsmith/labelsmith/pkg/pipeline"
//	)
//
//	// 1. Build a runner with the default media registry
//	runner := pipeline.NewRunner(pipeline.Config{})
//	defer runner.Close()
//
//	// 2. Parse and apply an action batch
//	batch, _ := bridge.ParseBatch(raw)
//	state, result, _ := runner.Apply(context.Background(), pipeline.State{}, batch)
//
//	// 3. Render a PNG preview
//	png, _, _ := runner.Preview(context.Background(), state,
//	    pipeline.PreviewOptions{Format: pipeline.FormatPNG})
//
// # Main Packages
//
// ## Engine
//
// [bridge] - The action vocabulary: verbs, payload normalization with
// fuzzy field matching, target resolution, and batch execution semantics.
//
// [editor] - The mutable layout workspace. Items, selection, and media
// assignment, with ordering maintained across edits.
//
// [render] - Measurement. A headless font-metric measurer plus an
// asynchronous coalescing scheduler that hands out frame tickets.
//
// [normalize] - The repair chain. Pattern passes that fix overlaps,
// ordering, and sizing, with a low-confidence fallback pass.
//
// ## Domain Model
//
// [item] - Layout items (text, qr, barcode, shape, image, icon) with
// canonical field definitions shared by the bridge and the stores.
//
// [media] - Printable media profiles: tape widths, die-cut sizes,
// resolution, margins, and the derived sizing limits.
//
// [geom] - Points, sizes, and rectangles in device units.
//
// ## Orchestration and Storage
//
// [pipeline] - Assembles the engine around a layout state and fronts
// previews with an artifact cache. Shared by the CLI and the HTTP API.
//
// [session] - Editing sessions for the HTTP API, in memory or in redis.
//
// [library] - Named layout storage, on disk or in MongoDB.
//
// [cache] - Content-addressed measurement and artifact caching.
//
// ## Output
//
// [preview] - PNG rasterization of layouts plus DOT/SVG bounds diagrams
// for debugging.
//
// [io] - Layout JSON import and export with legacy field migration.
package pkg
