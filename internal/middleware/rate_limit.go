package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	pkghttp "github.com/inkwell-labs/bookstore-api/pkg/http"
)

// RateLimitConfig bounds request volume per client IP within a window.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// DefaultAuthRateLimit is the policy for credential-bearing endpoints:
// 5 requests per minute, tight enough to blunt online guessing without
// locking out a user who fat-fingers a password a few times.
func DefaultAuthRateLimit() RateLimitConfig {
	return RateLimitConfig{Requests: 5, Window: time.Minute}
}

// RateLimitByIP throttles by client IP, honoring X-Forwarded-For and
// X-Real-IP via httprate's real-IP key. Each call owns its own counter,
// so endpoints wrapped separately are limited separately.
func RateLimitByIP(cfg RateLimitConfig) func(next http.Handler) http.Handler {
	return httprate.Limit(
		cfg.Requests,
		cfg.Window,
		httprate.WithKeyByRealIP(),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			pkghttp.WriteTooManyRequests(w, "Rate limit exceeded. Please try again later.")
		}),
	)
}
