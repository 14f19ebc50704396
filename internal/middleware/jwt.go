package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/shortpost/shortpost/internal/utils"
)

// Auth guards protected endpoints with a bearer token check. Every failure
// mode (missing, malformed, expired, bad signature) gets the same 401.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

			auth := r.Header.Get("Authorization")
			if auth == "" {
				utils.JSONError(w, http.StatusUnauthorized, "token is invalid")
				return
			}

			parts := strings.SplitN(auth, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				utils.JSONError(w, http.StatusUnauthorized, "token is invalid")
				return
			}

			token := strings.TrimSpace(parts[1])
			if token == "" {
				utils.JSONError(w, http.StatusUnauthorized, "token is invalid")
				return
			}

			claims, err := utils.VerifyToken(token, secret)
			if err != nil {
				utils.JSONError(w, http.StatusUnauthorized, "token is invalid")
				return
			}

			// push subject email into context
			ctx := context.WithValue(r.Context(), utils.CtxEmailKey, claims.Subject)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
