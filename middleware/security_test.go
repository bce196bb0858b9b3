package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/calisthenics-hub/api/apperrors"
)

func TestSecureHeaders(t *testing.T) {
	called := false
	h := SecureHeaders(false, false, zap.NewNop())(okHandler(t, &called))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.True(t, called)
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", rec.Header().Get("Referrer-Policy"))
}

func TestSecureHeaders_HTTPSRedirect(t *testing.T) {
	tests := []struct {
		name         string
		production   bool
		forceHTTPS   bool
		proto        string
		wantRedirect bool
	}{
		{name: "production without force passes plain http", production: true},
		{name: "development ignores force", forceHTTPS: true},
		{name: "production with force redirects plain http", production: true, forceHTTPS: true, wantRedirect: true},
		{name: "production with force trusts forwarded proto", production: true, forceHTTPS: true, proto: "https"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			h := SecureHeaders(tt.production, tt.forceHTTPS, zap.NewNop())(okHandler(t, &called))

			req := httptest.NewRequest(http.MethodGet, "http://api.example.com/health", nil)
			if tt.proto != "" {
				req.Header.Set("X-Forwarded-Proto", tt.proto)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, !tt.wantRedirect, called)
			if tt.wantRedirect {
				assert.Equal(t, http.StatusMovedPermanently, rec.Code)
			} else {
				assert.Equal(t, http.StatusOK, rec.Code)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	translator, logs := newObservedTranslator(true)
	called := false
	h := RateLimit(2, time.Minute, translator)(okHandler(t, &called))

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "203.0.113.7:51000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, send().Code)
	assert.Equal(t, http.StatusOK, send().Code)

	rec := send()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, apperrors.CodeTooManyRequests, decodeError(t, rec).Code)
	assert.Equal(t, 1, logs.Len())
}
