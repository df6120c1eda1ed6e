package core

import (
	"context"
	"log/slog"
)

// ContextHandler adds the workflow and run ids carried by the context to
// every record before passing it to the wrapped handler.
type ContextHandler struct {
	slog.Handler
}

func NewContextHandler(h slog.Handler) *ContextHandler {
	return &ContextHandler{Handler: h}
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id, ok := ctx.Value(CtxKeyWorkflowId).(string); ok && id != "" {
		r.AddAttrs(slog.String("workflow_id", id))
	}
	if id, ok := ctx.Value(CtxKeyRunId).(string); ok && id != "" {
		r.AddAttrs(slog.String("run_id", id))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithGroup(name)}
}
