package middleware

import "net/http"

// RequireFeature answers exactly like an unknown route while a feature is off.
func RequireFeature(enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return http.HandlerFunc(http.NotFound)
		}
		return next
	}
}
