package middleware

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/salesdesk/internal"
	"github.com/frahmantamala/salesdesk/internal/auth"
	"github.com/frahmantamala/salesdesk/internal/transport"
	"github.com/frahmantamala/salesdesk/pkg/logger"
)

// Tenant authenticates the bearer token and scopes the request to the
// tenant named in its claims.
func Tenant(validator auth.TokenValidator, lg *slog.Logger) func(http.Handler) http.Handler {
	base := transport.NewBaseHandler(lg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := transport.BearerToken(r)
			if token == "" {
				base.WriteError(w, internal.ErrInvalidToken)
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				base.Logger.Warn("tenant middleware: token rejected", "error", err)
				base.HandleServiceError(w, err)
				return
			}

			principal := claims.Principal()
			ctx := internal.ContextWithPrincipal(r.Context(), principal)
			ctx = logger.WithTenant(ctx, principal.TenantID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoles lets a request through only when the principal's role is one
// of roles.
func RequireRoles(lg *slog.Logger, roles ...string) func(http.Handler) http.Handler {
	base := transport.NewBaseHandler(lg)
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := internal.PrincipalFromContext(r.Context())
			if !ok {
				base.WriteError(w, internal.ErrInvalidToken)
				return
			}

			if _, ok := allowed[principal.Role]; !ok {
				base.Logger.Warn("access denied: role may not edit the hierarchy",
					"subject", principal.Subject,
					"tenant_id", principal.TenantID,
					"role", principal.Role,
					"allowed_roles", roles)
				base.WriteError(w, internal.ErrForbiddenRole)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
