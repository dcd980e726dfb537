package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dotoriham/backend/internal/auth"
	"github.com/dotoriham/backend/internal/httputil"
)

// Auth validates the bearer token on every request and threads the
// resolved account id through the request context.
func Auth(tokens auth.TokenProvider, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			accountID, err := tokens.ResolveAccount(token)
			if err != nil {
				logger.Debug("token rejected", "path", r.URL.Path, "error", err)
				httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, httputil.WithAccountID(r, accountID))
		})
	}
}
