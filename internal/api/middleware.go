package api

import (
	"net/http"

	"github.com/rankdeck/rankdeck-server/internal/http/response"
)

// ownerTokenHeader carries the anonymous ownership capability. Clients mint
// the token locally when creating a session and present it on every mutation.
const ownerTokenHeader = "x-owner-token"

// ownerToken extracts the caller's owner token from the request.
// Returns empty string if the header is absent.
func ownerToken(r *http.Request) string {
	return r.Header.Get(ownerTokenHeader)
}

// rateLimit rejects requests from clients that exceed their token bucket.
// Returns 429 Too Many Requests when the limit is exceeded.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := getClientIP(r)

		if !s.limiter.Allow(key) {
			s.logger.Warn("Rate limit exceeded",
				"ip", key,
				"path", r.URL.Path,
			)
			response.Error(w, http.StatusTooManyRequests, "Too many requests. Please try again later.", "RATE_LIMITED", s.logger)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// getClientIP extracts the client IP from the request.
// Checks X-Forwarded-For and X-Real-IP headers before falling back to RemoteAddr.
func getClientIP(r *http.Request) string {
	// X-Forwarded-For may contain multiple IPs, first is the client.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for i := 0; i < len(xff); i++ {
			if xff[i] == ',' {
				return xff[:i]
			}
		}
		return xff
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	// Fall back to RemoteAddr (strip port).
	ip := r.RemoteAddr
	for i := len(ip) - 1; i >= 0; i-- {
		if ip[i] == ':' {
			return ip[:i]
		}
	}
	return ip
}
