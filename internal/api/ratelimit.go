package api

import (
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/musicgenreator/genreator/internal/http/response"
	"github.com/musicgenreator/genreator/internal/ratelimit"
)

// staticPrefixes are served from the public directory and never rate limited.
var staticPrefixes = []string{"/public", "/images", "/styles", "/scripts"}

func isStaticPath(path string) bool {
	for _, prefix := range staticPrefixes {
		if strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

// RateLimitMiddleware creates a middleware that rate limits requests by IP.
// Returns 429 Too Many Requests with a Retry-After header when limit is exceeded.
func RateLimitMiddleware(limiter *ratelimit.KeyedRateLimiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isStaticPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			key := getClientIP(r)
			if ok, retryAfter := limiter.Reserve(key); !ok {
				logger.Warn("Rate limit exceeded",
					"ip", key,
					"path", r.URL.Path,
					"retry_after", retryAfter,
				)
				response.TooManyRequests(w, "Too many requests. Please try again later.", retryAfter, logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP extracts the client IP from the request.
// middleware.RealIP has already folded X-Forwarded-For and X-Real-IP into RemoteAddr.
func getClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
