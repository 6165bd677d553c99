// Package crashreport adapts error-severity observability events into crash
// reports. The event message becomes the report message; scalar attributes
// become tags, which keeps the reserved message key out of the tag set.
package crashreport

import (
	"context"
	"fmt"

	"sitegate/internal/crashreport"
	"sitegate/internal/observability"
)

// Reporter is the slice of the crash client this backend needs.
type Reporter interface {
	Capture(r crashreport.Report)
}

// Backend forwards events to the crash reporter. Register it for
// SeverityError only; lower severities are not crash material.
type Backend struct {
	reporter Reporter
}

// New constructs the backend.
func New(reporter Reporter) (*Backend, error) {
	if reporter == nil {
		return nil, fmt.Errorf("crash reporter is required")
	}
	return &Backend{reporter: reporter}, nil
}

// Deliver converts the event and hands it to the reporter. Capture is
// non-blocking, so this stays cheap on the request path.
func (b *Backend) Deliver(ctx context.Context, event observability.Event) error {
	tags := make(map[string]string, len(event.Attrs))
	for k, v := range event.Attrs {
		tags[k] = fmt.Sprintf("%v", v)
	}
	b.reporter.Capture(crashreport.Report{
		Message:   event.Message,
		Level:     event.Severity.String(),
		Tags:      tags,
		Timestamp: event.Time,
	})
	return nil
}
