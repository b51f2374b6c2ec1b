package middleware

import (
	"net/http"
	"time"
)

// Latency emulates the round-trip delay of a real network backend. The wait
// is bounded and honors request cancellation; a mutation never starts until
// the wait completes. A non-positive delay disables the middleware entirely.
func Latency(delay time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if delay <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			timer := time.NewTimer(delay)
			defer timer.Stop()

			select {
			case <-r.Context().Done():
				http.Error(w, "Request cancelled", http.StatusServiceUnavailable)
				return
			case <-timer.C:
			}

			next.ServeHTTP(w, r)
		})
	}
}
