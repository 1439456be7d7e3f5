package domain

import "strings"

// NormalizeHost reduces any origin, URL, or bare domain supplied by a client
// to a canonical host for comparison: lowercase, scheme stripped, leading
// "www." stripped, path and trailing slash stripped. The port is kept because
// two origins on different ports are different origins.
//
// Both sides of every domain comparison in the service (CORS gate,
// domain-lock, bootstrap origin cross-check) must go through this function.
func NormalizeHost(input string) string {
	host := strings.ToLower(strings.TrimSpace(input))
	if host == "" {
		return ""
	}

	if idx := strings.Index(host, "://"); idx != -1 {
		host = host[idx+3:]
	}
	host = strings.TrimPrefix(host, "www.")
	if idx := strings.IndexAny(host, "/?#"); idx != -1 {
		host = host[:idx]
	}

	return host
}
