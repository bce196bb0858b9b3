package middleware

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/calisthenics-hub/api/apperrors"
	"github.com/calisthenics-hub/api/auth"
)

// CredentialVerifier turns a raw Authorization header into a Principal.
type CredentialVerifier interface {
	Verify(header string) (auth.Principal, error)
}

// AuthMiddleware provides authentication and authorization middleware
type AuthMiddleware struct {
	verifier   CredentialVerifier
	translator *FailureTranslator
	logger     *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(verifier CredentialVerifier, translator *FailureTranslator, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		verifier:   verifier,
		translator: translator,
		logger:     logger,
	}
}

// Authenticate requires a valid bearer credential and attaches the
// resulting principal to the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := m.verifier.Verify(r.Header.Get("Authorization"))
		if err != nil {
			m.translator.Translate(w, r, err)
			return
		}

		m.logger.Debug("authentication successful",
			zap.String("request_id", GetRequestIDFromContext(r.Context())),
			zap.String("sub", principal.SubjectID),
			zap.String("role", string(principal.Role)))

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
	})
}

// RequireRoles returns a guard admitting principals whose role is one of roles.
func (m *AuthMiddleware) RequireRoles(roles ...auth.Role) func(http.Handler) http.Handler {
	return NewAccessGuard(auth.NewRoleSet(roles...), m.translator).Handler
}

// AccessGuard admits authenticated principals whose role is in a fixed set.
// The set is fixed at construction.
type AccessGuard struct {
	allowed    auth.RoleSet
	translator *FailureTranslator
}

// NewAccessGuard creates an AccessGuard. An empty role set admits nobody.
func NewAccessGuard(allowed auth.RoleSet, translator *FailureTranslator) *AccessGuard {
	return &AccessGuard{
		allowed:    allowed,
		translator: translator,
	}
}

// Check authorizes the principal carried by ctx.
func (g *AccessGuard) Check(ctx context.Context) error {
	principal, ok := PrincipalFromContext(ctx)
	if !ok {
		return apperrors.Unauthorized(apperrors.MsgNotAuthenticated)
	}
	if !g.allowed.Contains(principal.Role) {
		return apperrors.Forbidden(apperrors.MsgInsufficientPermissions).WithDetails(map[string]interface{}{
			"required_roles": g.allowed.Strings(),
		})
	}
	return nil
}

// Handler is the middleware form of Check.
func (g *AccessGuard) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := g.Check(r.Context()); err != nil {
			g.translator.Translate(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}
