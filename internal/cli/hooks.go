package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// logHooks writes observability events to the debug log.
type logHooks struct {
	logger *log.Logger
}

func (h *logHooks) OnLoad(_ context.Context, source string, nodes, edges int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("load failed", "source", source, "error", err)
		return
	}
	h.logger.Debug("load", "source", source, "nodes", nodes, "edges", edges, "duration", d)
}

func (h *logHooks) OnRenderStart(_ context.Context, format string) {
	h.logger.Debug("render start", "format", format)
}

func (h *logHooks) OnRenderComplete(_ context.Context, format string, size int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("render failed", "format", format, "error", err)
		return
	}
	h.logger.Debug("render done", "format", format, "bytes", size, "duration", d)
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *logHooks) OnRequest(_ context.Context, method, path string) {
	h.logger.Debug("request", "method", method, "path", path)
}

func (h *logHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.logger.Info("served", "method", method, "path", path, "status", status, "duration", d)
}
