// Package console delivers observability events as structured log lines.
package console

import (
	"context"
	"log/slog"

	"sitegate/internal/observability"
)

// Backend writes events through a slog.Logger.
type Backend struct {
	logger *slog.Logger
}

// New constructs a console backend. A nil logger falls back to the default.
func New(logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{logger: logger}
}

// Deliver logs the event at the slog level matching its severity.
func (b *Backend) Deliver(ctx context.Context, event observability.Event) error {
	attrs := make([]slog.Attr, 0, len(event.Attrs))
	for k, v := range event.Attrs {
		attrs = append(attrs, slog.Any(k, v))
	}
	b.logger.LogAttrs(ctx, level(event.Severity), event.Message, attrs...)
	return nil
}

func level(s observability.Severity) slog.Level {
	switch s {
	case observability.SeverityDebug:
		return slog.LevelDebug
	case observability.SeverityWarn:
		return slog.LevelWarn
	case observability.SeverityError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
