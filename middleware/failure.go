package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/calisthenics-hub/api/apperrors"
	"github.com/calisthenics-hub/api/utils"
)

// HandlerFunc is an HTTP handler that reports failures by returning them.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// ErrorResponse is the body written for every failed request.
type ErrorResponse struct {
	Error ErrorPayload `json:"error"`
}

// ErrorPayload carries the client-facing part of an AppError.
type ErrorPayload struct {
	Message string                 `json:"message"`
	Code    apperrors.Code         `json:"code"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// FailureRecorder counts failures by error code.
type FailureRecorder interface {
	ObserveFailure(code string)
}

// TranslatorOption configures a FailureTranslator.
type TranslatorOption func(*FailureTranslator)

// WithFailureRecorder reports every translated failure to rec.
func WithFailureRecorder(rec FailureRecorder) TranslatorOption {
	return func(t *FailureTranslator) {
		t.recorder = rec
	}
}

// FailureTranslator turns errors into logged, uniformly shaped HTTP
// responses. It is the only component that writes a failure response.
type FailureTranslator struct {
	logger        *zap.Logger
	exposeDetails bool
	recorder      FailureRecorder
}

// NewFailureTranslator creates a FailureTranslator. exposeDetails controls
// whether AppError details reach the client and must be false in production.
func NewFailureTranslator(logger *zap.Logger, exposeDetails bool, opts ...TranslatorOption) *FailureTranslator {
	t := &FailureTranslator{
		logger:        logger,
		exposeDetails: exposeDetails,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Translate logs err once and writes the error response.
func (t *FailureTranslator) Translate(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperrors.From(err)
	if appErr == nil {
		appErr = apperrors.Internal(nil)
	}

	fields := []zap.Field{
		zap.Int("status", appErr.Status),
		zap.String("code", string(appErr.Code)),
		zap.String("message", appErr.Message),
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
		zap.String("request_id", GetRequestIDFromContext(r.Context())),
	}
	if appErr.Err != nil {
		fields = append(fields, zap.Error(appErr.Err))
	}
	if stack := appErr.StackTrace(); stack != "" {
		fields = append(fields, zap.String("stack", stack))
	}
	t.logger.Error("request failed", fields...)
	if t.recorder != nil {
		t.recorder.ObserveFailure(string(appErr.Code))
	}

	payload := ErrorPayload{
		Message: appErr.Message,
		Code:    appErr.Code,
	}
	if t.exposeDetails && len(appErr.Details) > 0 {
		payload.Details = appErr.Details
	}

	if writeErr := utils.WriteJSON(w, appErr.Status, ErrorResponse{Error: payload}); writeErr != nil {
		t.logger.Warn("failed to write error response",
			zap.String("request_id", GetRequestIDFromContext(r.Context())),
			zap.Error(writeErr))
	}
}

// Handle adapts an error-returning handler to http.HandlerFunc.
func (t *FailureTranslator) Handle(fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			t.Translate(w, r, err)
		}
	}
}

// Recoverer converts panics in downstream handlers into INTERNAL_ERROR
// responses. http.ErrAbortHandler is re-raised so net/http can abort the
// connection.
func (t *FailureTranslator) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			err, ok := rec.(error)
			if !ok {
				err = fmt.Errorf("panic: %v", rec)
			}
			if r.Header.Get("Connection") != "Upgrade" {
				t.Translate(w, r, apperrors.Wrap(http.StatusInternalServerError, apperrors.CodeInternal, apperrors.MsgInternal, err))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// Timeout cancels the request context after d. When the handler returns
// past the deadline without having written a response, the request fails
// with REQUEST_TIMEOUT.
func (t *FailureTranslator) Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			if ww.Status() == 0 && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				t.Translate(ww, r, apperrors.Timeout(ctx.Err()))
			}
		})
	}
}

// NotFound handles requests for unknown routes.
func (t *FailureTranslator) NotFound(w http.ResponseWriter, r *http.Request) {
	t.Translate(w, r, apperrors.NotFound("Route not found"))
}

// MethodNotAllowed handles requests whose method is not registered for the route.
func (t *FailureTranslator) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	t.Translate(w, r, apperrors.New(http.StatusMethodNotAllowed, apperrors.CodeMethodNotAllowed,
		fmt.Sprintf("Method %s not allowed", r.Method)))
}
