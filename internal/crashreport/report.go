// Package crashreport ships error reports to an external ingest endpoint,
// best effort. Capture never blocks the request path: reports go through a
// bounded ring buffer and a single background worker that batches HTTP
// deliveries. When the buffer is full the oldest report is dropped.
package crashreport

import "time"

// Report is one error surfaced to the crash backend. Message carries the
// original error text; Tags carry the event attributes, excluding the
// message itself to avoid double-reporting.
type Report struct {
	Message   string            `json:"message"`
	Level     string            `json:"level"`
	Tags      map[string]string `json:"tags,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}
