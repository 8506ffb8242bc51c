package middleware

import (
	"net/http"
	"strings"
)

// ClientIP extracts the client identity from the forwarding headers set by
// the proxies in front of the service. It returns the first entry of
// X-Forwarded-For, then X-Real-IP, then the empty string when the client
// cannot be identified. Callers decide what an unidentifiable client maps to.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// X-Forwarded-For can contain multiple IPs, take the first one
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	return ""
}
