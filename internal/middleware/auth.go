package middleware

import (
	"net/http"

	"github.com/OG2511/maccabi-stickers-shop/internal/auth"
	"github.com/OG2511/maccabi-stickers-shop/internal/utils"
)

// RequireAdmin rejects requests that do not carry a valid admin session.
func RequireAdmin(sessions *auth.Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.ExtractSessionToken(r)
			if token == "" {
				utils.WriteJSONError(w, "admin authentication required", http.StatusUnauthorized)
				return
			}

			if _, err := sessions.Verify(token); err != nil {
				utils.WriteJSONError(w, "admin authentication required", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
