package internal

import (
	"context"
	"time"
)

type ctxKey string

const (
	ContextUserKey      ctxKey = "userID"
	ContextPrincipalKey ctxKey = "principal"
)

// Principal is the caller identity extracted from a verified bearer token.
type Principal struct {
	Subject  string `json:"sub"`
	TenantID string `json:"tenant_id"`
	Role     string `json:"role"`
}

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if userID, ok := ctx.Value(ContextUserKey).(string); ok {
		return userID
	}
	return ""
}

func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ContextUserKey, userID)
}

func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	ctx = context.WithValue(ctx, ContextPrincipalKey, p)
	return ContextWithUserID(ctx, p.Subject)
}

func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	if ctx == nil {
		return nil, false
	}
	p, ok := ctx.Value(ContextPrincipalKey).(*Principal)
	return p, ok && p != nil
}

// TenantFromContext returns the tenant scope of the request, or "" when the
// request carries no principal.
func TenantFromContext(ctx context.Context) string {
	if p, ok := PrincipalFromContext(ctx); ok {
		return p.TenantID
	}
	return ""
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
