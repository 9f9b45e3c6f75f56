package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"openmic/internal/adapters/ratelimit"
	h "openmic/internal/delivery/http/helpers"
	"openmic/internal/metrics"
)

// Limiter decides whether a keyed request may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (ratelimit.Decision, error)
}

// RateLimit returns a wrapper that limits requests per client IP under scope.
// A nil limiter disables limiting. Limiter failures let the request through.
func RateLimit(limiter Limiter, ips *ClientIPResolver, scope string, m *metrics.Metrics, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		if limiter == nil {
			return next
		}
		return func(w http.ResponseWriter, r *http.Request) {
			decision, err := limiter.Allow(r.Context(), scope+":"+ips.ClientIP(r))
			if err != nil {
				logger.WarnContext(r.Context(), "rate limiter unavailable", "err", err)
				next(w, r)
				return
			}
			if !decision.Allowed {
				m.RateLimited()
				secs := int(decision.RetryAfter.Seconds())
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				h.WriteJSONError(w, http.StatusTooManyRequests, h.ErrCodeRateLimited, "too many requests, try again later")
				return
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			next(w, r)
		}
	}
}
