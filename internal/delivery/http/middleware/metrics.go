package middleware

import (
	"net/http"
	"strconv"
	"time"

	"openmic/internal/metrics"
)

// Metrics records request counts and latency labelled by the matched ServeMux
// pattern. It must wrap the mux directly: the pattern is read from the request
// the mux saw.
func Metrics(m *metrics.Metrics, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(route, r.Method, strconv.Itoa(wrapped.status), time.Since(start).Seconds())
	})
}
