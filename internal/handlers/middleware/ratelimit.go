package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/okarpov/blogapi/internal/handlers/render"
	"github.com/okarpov/blogapi/internal/ratelimit"
)

const (
	rateLimitPrefix = "/auth/"
	rateLimitMax    = 5
	rateLimitWindow = 60 * time.Second
)

// RateLimitMiddleware caps requests per client IP on auth endpoints.
// Limiter failures let the request through: losing the gate for a while
// beats failing every login when the backing store is down.
func RateLimitMiddleware(limiter ratelimit.Limiter, l logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, rateLimitPrefix) {
				next.ServeHTTP(w, r)
				return
			}

			ok, err := limiter.Allow(r.Context(), clientIP(r), rateLimitMax, rateLimitWindow)
			if err != nil {
				l.Error("rate limiter error", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				render.ServiceError(w, "Too many requests. Please try again later.", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP picks the first X-Forwarded-For entry, then X-Real-IP, then
// the connection's remote address
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.SplitN(xff, ",", 2)[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
