// Package classifier orchestrates the per-request pipeline: parse the
// domain, consult the blocklist gate, emit the observability and analytics
// signals, and hand the classification to the content resolver.
package classifier

import (
	"path"
	"strings"

	"sitegate/internal/blocklist"
	"sitegate/internal/domain"
)

// State tracks the per-request pipeline position. States advance strictly
// forward; no request is classified twice.
type State int

const (
	StateParsed State = iota + 1
	StateGated
	StateClassified
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateParsed:
		return "parsed"
	case StateGated:
		return "gated"
	case StateClassified:
		return "classified"
	}
	return "unknown"
}

// Request carries the classification inputs extracted from one HTTP
// request.
type Request struct {
	Host        string
	Path        string
	OriginalURL string
	UserAgent   string
	ClientIP    string
	RequestID   string
}

// Result is the terminal classification handed to the content resolver.
// Decision is nil when the gate was not consulted (apex or asset request).
type Result struct {
	Admit    bool
	Parsed   domain.ParsedDomain
	Decision *blocklist.Decision
	State    State
}

// trackableExtensions are the document-page extensions counted as page
// views. Asset requests are not tracked, to bound analytics cost.
var trackableExtensions = map[string]struct{}{
	".html": {},
	".htm":  {},
}

// isTrackablePage reports whether the path indicates a full document
// response rather than a static asset.
func isTrackablePage(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	_, ok := trackableExtensions[ext]
	return ok
}
