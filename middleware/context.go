package middleware

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/calisthenics-hub/api/auth"
)

// Context key type to avoid collisions
type contextKey string

const principalKey contextKey = "principal"

// GetRequestIDFromContext retrieves the request ID assigned by chi's
// RequestID middleware.
func GetRequestIDFromContext(ctx context.Context) string {
	return chimw.GetReqID(ctx)
}

// WithPrincipal adds a verified principal to the context
func WithPrincipal(ctx context.Context, p auth.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext retrieves the principal attached by Authenticate.
// ok is false when the request was never authenticated.
func PrincipalFromContext(ctx context.Context) (auth.Principal, bool) {
	p, ok := ctx.Value(principalKey).(auth.Principal)
	return p, ok
}
