package logging

import (
	"context"
	"errors"
	"log/slog"
)

// ContextProvider returns attributes describing the live simulation state.
type ContextProvider func() []slog.Attr

// simHandler stamps each record with the provider's attributes. A key the
// caller already set on the record is left alone, so a handler logging for a
// specific tick keeps its own value.
type simHandler struct {
	inner    slog.Handler
	provider ContextProvider
}

// NewContextHandler wraps inner so every record carries the provider's attributes.
func NewContextHandler(inner slog.Handler, provider ContextProvider) slog.Handler {
	return &simHandler{inner: inner, provider: provider}
}

func (h *simHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *simHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.provider == nil {
		return h.inner.Handle(ctx, r)
	}
	set := make(map[string]struct{}, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		set[a.Key] = struct{}{}
		return true
	})
	for _, a := range h.provider() {
		if _, ok := set[a.Key]; !ok {
			r.AddAttrs(a)
		}
	}
	return h.inner.Handle(ctx, r)
}

func (h *simHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &simHandler{inner: h.inner.WithAttrs(attrs), provider: h.provider}
}

func (h *simHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &simHandler{inner: h.inner.WithGroup(name), provider: h.provider}
}

// fanout delivers each record to every sink that accepts its level: the log
// file or console, Graylog and the OTel bridge.
type fanout []slog.Handler

// NewFanout drops nil sinks and returns a handler writing to the rest.
func NewFanout(sinks ...slog.Handler) slog.Handler {
	f := make(fanout, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			f = append(f, s)
		}
	}
	return f
}

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, s := range f {
		if s.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle keeps going after a failing sink and reports every failure.
func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, s := range f {
		if !s.Enabled(ctx, r.Level) {
			continue
		}
		if err := s.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, s := range f {
		out[i] = s.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	if name == "" {
		return f
	}
	out := make(fanout, len(f))
	for i, s := range f {
		out[i] = s.WithGroup(name)
	}
	return out
}
