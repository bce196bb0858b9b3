package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/calisthenics-hub/api/apperrors"
	"github.com/calisthenics-hub/api/auth"
)

// MockVerifier is a mock implementation of CredentialVerifier
type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(header string) (auth.Principal, error) {
	args := m.Called(header)
	return args.Get(0).(auth.Principal), args.Error(1)
}

var testSecret = []byte("middleware-test-secret-0123456789abcdef")

func okHandler(t *testing.T, called *bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func newRealAuthMiddleware(t *testing.T, now time.Time) *AuthMiddleware {
	t.Helper()
	verifier, err := auth.NewVerifier(auth.Config{
		Secret: testSecret,
		Issuer: "calisthenics-hub",
		Now:    func() time.Time { return now },
	})
	require.NoError(t, err)
	translator, _ := newObservedTranslator(true)
	return NewAuthMiddleware(verifier, translator, zap.NewNop())
}

func signToken(t *testing.T, secret []byte, sub string, role auth.Role, iat, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			Issuer:    "calisthenics-hub",
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}).SignedString(secret)
	require.NoError(t, err)
	return token
}

func TestAuthenticate(t *testing.T) {
	t.Run("verified principal reaches the handler", func(t *testing.T) {
		verifier := new(MockVerifier)
		translator, logs := newObservedTranslator(true)
		m := NewAuthMiddleware(verifier, translator, zap.NewNop())

		principal := auth.Principal{SubjectID: "user-123", Role: auth.RoleMember}
		verifier.On("Verify", "Bearer valid-token").Return(principal, nil)

		var got auth.Principal
		handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			require.True(t, ok)
			got = p
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req.Header.Set("Authorization", "Bearer valid-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, principal, got)
		assert.Equal(t, 0, logs.Len())
		verifier.AssertExpectations(t)
	})

	t.Run("verifier failure is translated and handler is skipped", func(t *testing.T) {
		verifier := new(MockVerifier)
		translator, logs := newObservedTranslator(true)
		m := NewAuthMiddleware(verifier, translator, zap.NewNop())

		verifier.On("Verify", "Bearer bad").Return(auth.Principal{}, apperrors.InvalidToken(nil))

		called := false
		req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
		req.Header.Set("Authorization", "Bearer bad")
		rec := httptest.NewRecorder()
		m.Authenticate(okHandler(t, &called)).ServeHTTP(rec, req)

		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, apperrors.CodeInvalidToken, decodeError(t, rec).Code)
		assert.Equal(t, 1, logs.Len())
	})

	t.Run("missing header yields exact unauthorized body", func(t *testing.T) {
		m := newRealAuthMiddleware(t, time.Now())

		called := false
		rec := httptest.NewRecorder()
		m.Authenticate(okHandler(t, &called)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders", nil))

		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t,
			`{"error":{"message":"Missing or invalid authorization header","code":"UNAUTHORIZED"}}`+"\n",
			rec.Body.String())
	})

	t.Run("expired token", func(t *testing.T) {
		now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
		m := newRealAuthMiddleware(t, now)
		token := signToken(t, testSecret, "user-1", auth.RoleMember, now.Add(-2*time.Hour), now.Add(-time.Hour))

		called := false
		req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		m.Authenticate(okHandler(t, &called)).ServeHTTP(rec, req)

		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		payload := decodeError(t, rec)
		assert.Equal(t, apperrors.CodeTokenExpired, payload.Code)
		assert.Equal(t, "Token expired", payload.Message)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
		m := newRealAuthMiddleware(t, now)
		token := signToken(t, []byte("another-secret"), "user-1", auth.RoleAdmin, now, now.Add(time.Hour))

		called := false
		req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		m.Authenticate(okHandler(t, &called)).ServeHTTP(rec, req)

		assert.False(t, called)
		payload := decodeError(t, rec)
		assert.Equal(t, apperrors.CodeInvalidToken, payload.Code)
		assert.Equal(t, "Invalid token", payload.Message)
	})
}

func TestAccessGuard(t *testing.T) {
	withPrincipal := func(role auth.Role) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		return req.WithContext(WithPrincipal(req.Context(), auth.Principal{SubjectID: "user-1", Role: role}))
	}

	t.Run("no principal is unauthorized", func(t *testing.T) {
		translator, _ := newObservedTranslator(true)
		guard := NewAccessGuard(auth.NewRoleSet(auth.RoleAdmin), translator)

		called := false
		rec := httptest.NewRecorder()
		guard.Handler(okHandler(t, &called)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users", nil))

		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		payload := decodeError(t, rec)
		assert.Equal(t, apperrors.CodeUnauthorized, payload.Code)
		assert.Equal(t, "User not authenticated", payload.Message)
	})

	t.Run("role outside set is forbidden", func(t *testing.T) {
		translator, _ := newObservedTranslator(true)
		guard := NewAccessGuard(auth.NewRoleSet(auth.RoleAdmin), translator)

		called := false
		rec := httptest.NewRecorder()
		guard.Handler(okHandler(t, &called)).ServeHTTP(rec, withPrincipal(auth.RoleMember))

		assert.False(t, called)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		payload := decodeError(t, rec)
		assert.Equal(t, apperrors.CodeForbidden, payload.Code)
		assert.Equal(t, "Insufficient permissions", payload.Message)
		assert.Equal(t, []interface{}{"admin"}, payload.Details["required_roles"])
	})

	t.Run("role in set passes unchanged", func(t *testing.T) {
		translator, _ := newObservedTranslator(true)
		guard := NewAccessGuard(auth.NewRoleSet(auth.RoleAdmin, auth.RoleMember), translator)

		called := false
		rec := httptest.NewRecorder()
		guard.Handler(okHandler(t, &called)).ServeHTTP(rec, withPrincipal(auth.RoleMember))

		assert.True(t, called)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("empty set forbids everyone", func(t *testing.T) {
		translator, _ := newObservedTranslator(true)
		guard := NewAccessGuard(auth.NewRoleSet(), translator)

		for _, role := range []auth.Role{auth.RoleAdmin, auth.RoleMember} {
			err := guard.Check(withPrincipal(role).Context())
			assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden), role)
		}
	})

	t.Run("check without principal", func(t *testing.T) {
		translator, _ := newObservedTranslator(true)
		guard := NewAccessGuard(auth.NewRoleSet(auth.RoleMember), translator)

		err := guard.Check(context.Background())
		assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))
	})

	t.Run("RequireRoles composes with Authenticate", func(t *testing.T) {
		now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
		m := newRealAuthMiddleware(t, now)
		memberToken := signToken(t, testSecret, "user-1", auth.RoleMember, now, now.Add(time.Hour))
		adminToken := signToken(t, testSecret, "user-2", auth.RoleAdmin, now, now.Add(time.Hour))

		called := false
		handler := m.Authenticate(m.RequireRoles(auth.RoleAdmin)(okHandler(t, &called)))

		req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		req.Header.Set("Authorization", "Bearer "+memberToken)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.False(t, called)

		req = httptest.NewRequest(http.MethodGet, "/api/users", nil)
		req.Header.Set("Authorization", "Bearer "+adminToken)
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, called)
	})
}

func TestPrincipalFromContext(t *testing.T) {
	_, ok := PrincipalFromContext(context.Background())
	assert.False(t, ok)

	p := auth.Principal{SubjectID: "user-9", Role: auth.RoleAdmin}
	got, ok := PrincipalFromContext(WithPrincipal(context.Background(), p))
	assert.True(t, ok)
	assert.Equal(t, p, got)
}
