// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about action batches, render scheduling, and normalization
// passes.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetBridgeHooks(&myBridgeHooks{})
//	    observability.SetRenderHooks(&myRenderHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Bridge().OnBatchStart(ctx, len(actions), rebuild)
//	// ... run the batch ...
//	observability.Bridge().OnBatchComplete(ctx, applied, len(errs), duration)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Bridge Hooks
// =============================================================================

// BridgeHooks receives events from action batch execution.
type BridgeHooks interface {
	// Batch events
	OnBatchStart(ctx context.Context, actionCount int, rebuild bool)
	OnBatchComplete(ctx context.Context, applied, errorCount int, duration time.Duration)

	// Action events
	OnActionApplied(ctx context.Context, verb string, target string)
	OnActionRejected(ctx context.Context, verb string, reason string)
}

// =============================================================================
// Render Hooks
// =============================================================================

// RenderHooks receives events from the render scheduler and the
// reconciliation loop.
type RenderHooks interface {
	// OnRenderStart records the beginning of a measurement pass.
	OnRenderStart(ctx context.Context, itemCount int)

	// OnRenderComplete records a finished measurement pass.
	OnRenderComplete(ctx context.Context, itemCount int, duration time.Duration, err error)

	// OnReconcileRetry records a bounds re-request for missing item ids.
	OnReconcileRetry(ctx context.Context, attempt int, missing int)
}

// =============================================================================
// Normalize Hooks
// =============================================================================

// NormalizeHooks receives events from the pattern normalization chain.
type NormalizeHooks interface {
	// OnPassMatched records which pass claimed the layout.
	OnPassMatched(ctx context.Context, pass string)

	// OnPassComplete records the outcome of the applied pass.
	OnPassComplete(ctx context.Context, pass string, resolved bool, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopBridgeHooks is a no-op implementation of BridgeHooks.
type NoopBridgeHooks struct{}

func (NoopBridgeHooks) OnBatchStart(context.Context, int, bool)                  {}
func (NoopBridgeHooks) OnBatchComplete(context.Context, int, int, time.Duration) {}
func (NoopBridgeHooks) OnActionApplied(context.Context, string, string)          {}
func (NoopBridgeHooks) OnActionRejected(context.Context, string, string)         {}

// NoopRenderHooks is a no-op implementation of RenderHooks.
type NoopRenderHooks struct{}

func (NoopRenderHooks) OnRenderStart(context.Context, int)                          {}
func (NoopRenderHooks) OnRenderComplete(context.Context, int, time.Duration, error) {}
func (NoopRenderHooks) OnReconcileRetry(context.Context, int, int)                  {}

// NoopNormalizeHooks is a no-op implementation of NormalizeHooks.
type NoopNormalizeHooks struct{}

func (NoopNormalizeHooks) OnPassMatched(context.Context, string)                              {}
func (NoopNormalizeHooks) OnPassComplete(context.Context, string, bool, time.Duration, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	bridgeHooks    BridgeHooks    = NoopBridgeHooks{}
	renderHooks    RenderHooks    = NoopRenderHooks{}
	normalizeHooks NormalizeHooks = NoopNormalizeHooks{}
	hooksMu        sync.RWMutex
)

// SetBridgeHooks registers custom bridge hooks.
// This should be called once at application startup before any batches run.
func SetBridgeHooks(h BridgeHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		bridgeHooks = h
	}
}

// SetRenderHooks registers custom render hooks.
// This should be called once at application startup before any rendering.
func SetRenderHooks(h RenderHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		renderHooks = h
	}
}

// SetNormalizeHooks registers custom normalization hooks.
// This should be called once at application startup before any batches run.
func SetNormalizeHooks(h NormalizeHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		normalizeHooks = h
	}
}

// Bridge returns the registered bridge hooks.
func Bridge() BridgeHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return bridgeHooks
}

// Render returns the registered render hooks.
func Render() RenderHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return renderHooks
}

// Normalize returns the registered normalization hooks.
func Normalize() NormalizeHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return normalizeHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	bridgeHooks = NoopBridgeHooks{}
	renderHooks = NoopRenderHooks{}
	normalizeHooks = NoopNormalizeHooks{}
}
