package middleware

import (
	"net/http"

	"github.com/angelmondragon/fleetstock-backend/api/responses"
)

// ErrorDetail lets 500 responses include the raw error text. Enabled only in
// development and test.
func ErrorDetail(enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(responses.WithErrorDetail(r.Context())))
		})
	}
}
