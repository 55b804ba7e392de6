package auth

import (
	"net"
	"strings"
)

// UnknownClientKey is the shared bucket for requests whose origin cannot
// be determined. All unknown-origin clients share one rate budget.
const UnknownClientKey = "unknown"

// ClientKey derives the rate-limit key for a request: the first address of
// the forwarded-for chain when present, then the direct peer address, then
// the shared unknown bucket.
func ClientKey(forwardedFor, remoteAddr string) string {
	if forwardedFor != "" {
		first := forwardedFor
		if i := strings.IndexByte(first, ','); i >= 0 {
			first = first[:i]
		}
		if addr := strings.TrimSpace(first); addr != "" {
			return addr
		}
	}
	if remoteAddr != "" {
		if host, _, err := net.SplitHostPort(remoteAddr); err == nil && host != "" {
			return host
		}
		return remoteAddr
	}
	return UnknownClientKey
}
