package middleware

import (
	"net/http"

	"go.uber.org/zap"
)

// RequireRole gates a route subtree to one role. A caller holding the wrong
// role gets 403 plus the path of their own dashboard, which the client uses
// as the redirect target.
func RequireRole(role string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFrom(r.Context())
			if !ok {
				logger.Warn("Identity not found in context")
				RespondWithError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			if identity.Role != role {
				logger.Warn("User attempted to access another role's dashboard",
					zap.String("role", identity.Role),
					zap.String("required_role", role),
				)
				RespondWithErrorDetails(w, http.StatusForbidden, "insufficient permissions", map[string]interface{}{
					"location": identity.DashboardPath(),
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
