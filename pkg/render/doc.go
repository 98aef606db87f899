// Package render measures label layouts and schedules measurement passes.
//
// # Overview
//
// This package contains the measurement side of the engine. It provides:
//
//   - The [Measurer] contract: item snapshot + media profile in, a
//     [Frame] of per-item bounds and the canvas extent out
//   - The [Scheduler]: an asynchronous, coalescing front for a Measurer
//   - The [Headless] measurer: font-metric measurement without a display
//
// # Scheduling
//
// Rendering is asynchronous and coalescing. The scheduler is an explicit
// two-state machine: idle, or busy with at most one queued follow-up pass.
// Requests arriving while a pass is in flight share the single queued pass.
// Each request gets a [Ticket], a cancellable promise that resolves with
// the first frame measured at or after the request:
//
//	ticket := sched.Request()
//	frame, err := ticket.Wait(ctx)
//
// Callers that only need the latest completed frame use [Scheduler.Snapshot].
//
// # Headless measurement
//
// [Headless] lays items out the way the on-device preview does: flow items
// advance a cursor along the feed axis, absolute items pin to draw-space
// coordinates, shapes interpret their offsets relative to the canvas
// centre. Text metrics come from a real font face when one can be found
// (via go-findfont and fogleman/gg), with a deterministic estimate as the
// fallback. Measurement results are fronted by the cache package.
package render
