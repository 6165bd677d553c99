// Package domain holds the site-addressing value types shared across the
// portal pipeline. ParsedDomain is created once per request and discarded
// after classification; nothing in this package performs I/O.
package domain

// ParsedDomain is the canonical classification of an incoming host/path
// pair. Subdomain identifies the logical site being requested; an empty
// Subdomain means the request targets the portal apex itself (landing page,
// health check).
type ParsedDomain struct {
	Subdomain string
	Path      string
}

// HasSubdomain reports whether the request targets a hosted site rather
// than the portal apex.
func (p ParsedDomain) HasSubdomain() bool {
	return p.Subdomain != ""
}
