package middleware

import (
	"net/http"
	"strings"

	"quell-core-api/internal/domain"
	"quell-core-api/internal/infrastructure/httputil"
	"quell-core-api/internal/jwtauth"

	"github.com/rs/zerolog"
)

// JWTAuth guards the dashboard-facing routes with bearer tokens.
func JWTAuth(tokens *jwtauth.Manager, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				httputil.WriteError(w, http.StatusUnauthorized, "Missing Authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				httputil.WriteError(w, http.StatusUnauthorized, "Invalid Authorization header format")
				return
			}

			claims, err := tokens.Parse(parts[1])
			if err != nil {
				logger.Warn().Err(err).Msg("Token validation failed")
				httputil.WriteError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			ctx := domain.WithUserID(r.Context(), claims.UserID)
			ctx = domain.WithRole(ctx, domain.UserRole(claims.Role))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects non-admin sessions. Must run after JWTAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if domain.RoleFromContext(r.Context()) != domain.RoleAdmin {
			httputil.WriteError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
