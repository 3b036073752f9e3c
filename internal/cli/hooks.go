package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// logHooks writes observability events to the CLI logger. They are only
// registered with --verbose.
type logHooks struct {
	logger *log.Logger
}

func (h logHooks) OnLayoutComplete(_ context.Context, workflowType string, nodes, layers, unresolved int, d time.Duration) {
	h.logger.Debug("layout", "workflow", workflowType, "nodes", nodes, "layers", layers, "unresolved", unresolved, "took", d.Round(time.Microsecond))
}

func (h logHooks) OnRenderComplete(_ context.Context, format string, bytes int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("render failed", "format", format, "err", err)
		return
	}
	h.logger.Debug("render", "format", format, "bytes", bytes, "took", d.Round(time.Microsecond))
}

func (h logHooks) OnFallback(_ context.Context, workflowType string, phases int, cause error) {
	h.logger.Debug("fallback", "workflow", workflowType, "phases", phases, "cause", cause)
}

func (h logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h logHooks) OnFetchStart(_ context.Context, src, workflowType string) {
	h.logger.Debug("fetching workflow", "source", src, "type", workflowType)
}

func (h logHooks) OnFetchComplete(_ context.Context, src, workflowType string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("fetch failed", "source", src, "type", workflowType, "err", err)
		return
	}
	h.logger.Debug("fetched workflow", "source", src, "type", workflowType, "took", d.Round(time.Millisecond))
}
