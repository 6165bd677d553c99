// Package observability implements the fire-and-forget event fan-out that
// sits beside the request pipeline. Events are delivered synchronously to
// every registered backend; a failing backend is isolated and can never
// reach back into request handling. No queueing, no retry.
package observability

import "time"

// Severity orders event levels from least to most severe.
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarn
	SeverityError
)

// String returns the lowercase severity name.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarn:
		return "warn"
	case SeverityError:
		return "error"
	}
	return "unknown"
}

// messageKey is reserved for the event message; attributes using it are
// dropped at construction to avoid double-reporting downstream.
const messageKey = "message"

// Event is one observability signal. Message is fixed at construction;
// Attrs hold scalar context for backends to translate into their own
// tag/field models.
type Event struct {
	Severity Severity
	Message  string
	Attrs    map[string]any
	Time     time.Time
}

// NewEvent builds an event, stripping the reserved message key from attrs.
func NewEvent(severity Severity, message string, attrs map[string]any) Event {
	cleaned := make(map[string]any, len(attrs))
	for k, v := range attrs {
		if k == messageKey {
			continue
		}
		cleaned[k] = v
	}
	return Event{
		Severity: severity,
		Message:  message,
		Attrs:    cleaned,
		Time:     time.Now(),
	}
}
