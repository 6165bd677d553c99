// Package blocklist implements the admission gate consulted before a hosted
// site is served. Membership lives in an external store (Redis in
// production); the gate itself holds no per-request state and caches
// nothing.
package blocklist

import (
	"fmt"
	"time"
)

// Policy controls whether the gate consults the store at all. It is explicit
// configuration rather than an environment-string comparison so both modes
// are exercisable in tests.
type Policy string

const (
	// PolicyEnforce consults the store and denies blocked subdomains.
	PolicyEnforce Policy = "enforce"
	// PolicyDisabled admits everything without touching the store.
	PolicyDisabled Policy = "disabled"
)

// FailMode decides the admission outcome when the store lookup fails.
// Silently admitting a blocked site is security-relevant, so this is a
// deliberate switch, never inferred.
type FailMode string

const (
	// FailOpen admits on lookup failure (availability over enforcement).
	FailOpen FailMode = "open"
	// FailClosed denies on lookup failure (the production expectation).
	FailClosed FailMode = "closed"
)

// ParsePolicy validates a configured policy string.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyEnforce, PolicyDisabled:
		return Policy(s), nil
	}
	return "", fmt.Errorf("unknown blocklist policy %q", s)
}

// ParseFailMode validates a configured fail mode string.
func ParseFailMode(s string) (FailMode, error) {
	switch FailMode(s) {
	case FailOpen, FailClosed:
		return FailMode(s), nil
	}
	return "", fmt.Errorf("unknown blocklist fail mode %q", s)
}

// Decision is the outcome of one gate check. Subject is the exact
// lower-cased subdomain that was evaluated. Decisions are consumed
// immediately by the classifier and never persisted.
type Decision struct {
	Subject   string
	Blocked   bool
	CheckedAt time.Time
}
