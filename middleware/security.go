package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"
	"go.uber.org/zap"

	"github.com/calisthenics-hub/api/apperrors"
)

// SecureHeaders sets the standard browser hardening headers. Plain-HTTP
// requests are redirected to https only when forceHTTPS is set in
// production.
func SecureHeaders(production, forceHTTPS bool, logger *zap.Logger) func(http.Handler) http.Handler {
	sm := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'",
		STSSeconds:            31536000,
		STSIncludeSubdomains:  true,
		SSLRedirect:           production && forceHTTPS,
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:         !production,
	})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := sm.Process(w, r); err != nil {
				// secure has already written the redirect or rejection
				logger.Warn("secure headers blocked request",
					zap.String("request_id", GetRequestIDFromContext(r.Context())),
					zap.Error(err))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit limits requests per client IP. Rejections go through the
// translator as TOO_MANY_REQUESTS.
func RateLimit(limit int, window time.Duration, translator *FailureTranslator) func(http.Handler) http.Handler {
	return httprate.Limit(limit, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			translator.Translate(w, r, apperrors.TooManyRequests())
		}),
	)
}
