package auth

import (
	"log/slog"
	"net/http"
)

// RoleMiddleware gates whole route groups on the role hierarchy. Finer
// checks (ownership, self-approval) stay inside the lifecycle services.
type RoleMiddleware struct {
	logger *slog.Logger
}

func NewRoleMiddleware(logger *slog.Logger) *RoleMiddleware {
	return &RoleMiddleware{logger: logger}
}

func (rm *RoleMiddleware) require(minRole Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok || actor == nil {
				rm.logger.Warn("role check failed: actor not found in context")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !actor.Role.AtLeast(minRole) {
				rm.logger.WarnContext(r.Context(), "access denied: insufficient role",
					"actor_id", actor.ID,
					"actor_role", actor.Role,
					"required_role", minRole)
				http.Error(w, "Forbidden: insufficient role", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (rm *RoleMiddleware) RequireManager() func(http.Handler) http.Handler {
	return rm.require(RoleManager)
}

func (rm *RoleMiddleware) RequireAdmin() func(http.Handler) http.Handler {
	return rm.require(RoleAdmin)
}
