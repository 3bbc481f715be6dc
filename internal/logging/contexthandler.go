package logging

import (
	"context"
	"log/slog"
	"sync"
)

// ContextProvider is a function that returns dynamic context attributes.
type ContextProvider func() []slog.Attr

// ContextHandler wraps another handler and injects dynamic context attributes.
type ContextHandler struct {
	inner    slog.Handler
	provider ContextProvider
}

// NewContextHandler creates a handler that adds dynamic context to each record.
func NewContextHandler(inner slog.Handler, provider ContextProvider) *ContextHandler {
	return &ContextHandler{
		inner:    inner,
		provider: provider,
	}
}

// Enabled delegates to the inner handler.
func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle adds dynamic context attributes and delegates to the inner handler.
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.provider != nil {
		r.AddAttrs(h.provider()...)
	}
	return h.inner.Handle(ctx, r)
}

// WithAttrs returns a new ContextHandler with the given attributes.
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{
		inner:    h.inner.WithAttrs(attrs),
		provider: h.provider,
	}
}

// WithGroup returns a new ContextHandler with the given group.
func (h *ContextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &ContextHandler{
		inner:    h.inner.WithGroup(name),
		provider: h.provider,
	}
}

// SceneContext tracks the scenario currently being converted.
// Its Attrs method is a ContextProvider.
type SceneContext struct {
	mu     sync.RWMutex
	name   string
	source string
}

// Set records the scenario name and where it was loaded from.
func (s *SceneContext) Set(name, source string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
	s.source = source
}

// Attrs returns scenario attributes, or none before Set is called.
func (s *SceneContext) Attrs() []slog.Attr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.name == "" {
		return nil
	}
	attrs := []slog.Attr{slog.String("scenario", s.name)}
	if s.source != "" {
		attrs = append(attrs, slog.String("source", s.source))
	}
	return attrs
}
