package domain

import (
	"net"
	"strings"
)

// Parse splits host into the site subdomain and the portal apex, where
// suffixLen is the number of trailing labels reserved for the portal's own
// domain ("wal.app" → 2). It is total: malformed hosts degrade to an apex
// classification rather than erroring, since every request must still be
// classifiable.
//
// The returned subdomain is lower-cased. Empty labels (consecutive or
// trailing separators) are dropped. A port suffix is ignored.
func Parse(host, path string, suffixLen int) ParsedDomain {
	labels := splitHost(host)

	sub := ""
	if suffixLen > 0 && len(labels) > suffixLen {
		sub = strings.Join(labels[:len(labels)-suffixLen], ".")
	}

	return ParsedDomain{
		Subdomain: sub,
		Path:      normalizePath(path),
	}
}

func splitHost(host string) []string {
	host = strings.TrimSpace(host)
	if host == "" {
		return nil
	}

	// Best-effort port strip; a bare host makes SplitHostPort error, which
	// is fine.
	if strings.Contains(host, ":") {
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
	}

	host = strings.ToLower(strings.TrimSuffix(host, "."))

	parts := strings.Split(host, ".")
	labels := parts[:0]
	for _, l := range parts {
		if l != "" {
			labels = append(labels, l)
		}
	}
	return labels
}

func normalizePath(path string) string {
	if path == "" {
		return "/"
	}
	if path[0] != '/' {
		return "/" + path
	}
	return path
}
