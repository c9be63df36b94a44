package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level.
type LogHooks struct {
	Logger *log.Logger
}

// UseLogger registers [LogHooks] for every event category.
func UseLogger(l *log.Logger) {
	h := LogHooks{Logger: l}
	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetViewHooks(h)
	SetHTTPHooks(h)
}

func (h LogHooks) OnParseStart(_ context.Context, language, path string) {
	h.Logger.Debug("parse start", "language", language, "path", path)
}

func (h LogHooks) OnParseComplete(_ context.Context, language, path string, nodes int, d time.Duration, err error) {
	h.Logger.Debug("parse done", "language", language, "path", path, "nodes", nodes, "took", d, "err", err)
}

func (h LogHooks) OnLayoutStart(_ context.Context, nodes int) {
	h.Logger.Debug("layout start", "nodes", nodes)
}

func (h LogHooks) OnLayoutComplete(_ context.Context, visible int, truncated bool, d time.Duration) {
	h.Logger.Debug("layout done", "visible", visible, "truncated", truncated, "took", d)
}

func (h LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.Logger.Debug("render start", "formats", formats)
}

func (h LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.Logger.Debug("render done", "formats", formats, "took", d, "err", err)
}

func (h LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h LogHooks) OnOpen(_ context.Context, viewID, path string) {
	h.Logger.Debug("view open", "view", viewID, "path", path)
}

func (h LogHooks) OnClose(_ context.Context, viewID string) {
	h.Logger.Debug("view close", "view", viewID)
}

func (h LogHooks) OnActivate(_ context.Context, viewID, nodeID, mode string) {
	h.Logger.Debug("activate", "view", viewID, "node", nodeID, "mode", mode)
}

func (h LogHooks) OnRefresh(_ context.Context, viewID string, d time.Duration, err error) {
	h.Logger.Debug("refresh", "view", viewID, "took", d, "err", err)
}

func (h LogHooks) OnRequest(_ context.Context, method, route string) {
	h.Logger.Debug("request", "method", method, "route", route)
}

func (h LogHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.Logger.Debug("response", "method", method, "route", route, "status", status, "took", d)
}

var (
	_ PipelineHooks = LogHooks{}
	_ CacheHooks    = LogHooks{}
	_ ViewHooks     = LogHooks{}
	_ HTTPHooks     = LogHooks{}
)
