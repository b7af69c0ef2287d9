package api

import (
	"net/http"
	"strings"
)

// AuthMiddleware returns middleware that validates bearer-token authentication.
// If token is empty, any request carrying a Bearer token is accepted. If token
// is non-empty, the Bearer token must match exactly.
func AuthMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const prefix = "Bearer "
			if !strings.HasPrefix(authHeader, prefix) {
				Unauthorized(w)
				return
			}
			if bearerValue := authHeader[len(prefix):]; token == "" || bearerValue == token {
				next.ServeHTTP(w, r)
				return
			}
			Unauthorized(w)
		})
	}
}
