// Package urlutil normalizes and rebases the site URLs the suite navigates to.
package urlutil

import (
	"net/url"
	"strings"
)

// BaseWithSlash returns base with exactly one trailing slash, or "" for a blank base.
func BaseWithSlash(base string) string {
	base = normalizeBaseURL(base)
	if base == "" {
		return ""
	}
	return base + "/"
}

// BuildAbsolute builds an absolute URL from a base and a path.
func BuildAbsolute(base, path string) string {
	base = normalizeBaseURL(base)
	if path == "" {
		return base
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if strings.HasPrefix(path, "/") {
		return base + path
	}
	return base + "/" + path
}

// Rebase moves raw from under the from base to the to base. URLs outside
// from are returned unchanged.
func Rebase(raw, from, to string) string {
	from, to = BaseWithSlash(from), BaseWithSlash(to)
	if from == "" || to == "" || from == to {
		return raw
	}
	if rest, ok := strings.CutPrefix(raw, from); ok {
		return to + rest
	}
	if raw == strings.TrimSuffix(from, "/") {
		return to
	}
	return raw
}

// Host returns the hostname of raw without port, or "" when raw does not parse.
func Host(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return u.Hostname()
}

func normalizeBaseURL(base string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return ""
	}
	return strings.TrimRight(base, "/")
}
