package middleware

import (
	"net/http"
	"time"
)

// DefaultRequestTimeout bounds handler execution for API requests.
const DefaultRequestTimeout = 30 * time.Second

const timeoutBody = `{"success":false,"error":"request timed out"}`

// Timeout cuts off handlers that exceed the given duration and replies with a
// JSON error body matching the rest of the API surface.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, timeoutBody)
	}
}
