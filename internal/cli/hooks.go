package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// Logging implementations of the engine observability hooks, installed by
// the serve command. Batch outcomes log at info, per-action and per-pass
// detail at debug, failures at warn.

// logBridgeHooks logs action batch execution events.
type logBridgeHooks struct {
	logger *log.Logger
}

func (h logBridgeHooks) OnBatchStart(_ context.Context, actionCount int, rebuild bool) {
	h.logger.Debugf("batch start: %d actions (rebuild=%t)", actionCount, rebuild)
}

func (h logBridgeHooks) OnBatchComplete(_ context.Context, applied, errorCount int, duration time.Duration) {
	h.logger.Infof("batch complete: %d applied, %d errors (%s)", applied, errorCount, duration.Round(time.Millisecond))
}

func (h logBridgeHooks) OnActionApplied(_ context.Context, verb, target string) {
	h.logger.Debugf("action %s %s", verb, target)
}

func (h logBridgeHooks) OnActionRejected(_ context.Context, verb, reason string) {
	h.logger.Warnf("action %s rejected: %s", verb, reason)
}

// logRenderHooks logs measurement scheduler events.
type logRenderHooks struct {
	logger *log.Logger
}

func (h logRenderHooks) OnRenderStart(_ context.Context, itemCount int) {
	h.logger.Debugf("measuring %d items", itemCount)
}

func (h logRenderHooks) OnRenderComplete(_ context.Context, itemCount int, duration time.Duration, err error) {
	if err != nil {
		h.logger.Warnf("measurement failed after %s: %v", duration.Round(time.Millisecond), err)
		return
	}
	h.logger.Debugf("measured %d items (%s)", itemCount, duration.Round(time.Millisecond))
}

func (h logRenderHooks) OnReconcileRetry(_ context.Context, attempt, missing int) {
	h.logger.Debugf("reconcile retry %d: %d items missing bounds", attempt, missing)
}

// logNormalizeHooks logs normalization chain events.
type logNormalizeHooks struct {
	logger *log.Logger
}

func (h logNormalizeHooks) OnPassMatched(_ context.Context, pass string) {
	h.logger.Debugf("normalize pass %s matched", pass)
}

func (h logNormalizeHooks) OnPassComplete(_ context.Context, pass string, resolved bool, duration time.Duration, err error) {
	if err != nil {
		h.logger.Warnf("normalize pass %s failed: %v", pass, err)
		return
	}
	h.logger.Debugf("normalize pass %s done (resolved=%t, %s)", pass, resolved, duration.Round(time.Millisecond))
}
