// Package apperrors defines the typed failure carried through the request
// pipeline. Every failure that leaves the API is rendered from an AppError.
package apperrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

// Code is the stable machine-readable tag sent to clients.
type Code string

const (
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeInvalidToken       Code = "INVALID_TOKEN"
	CodeTokenExpired       Code = "TOKEN_EXPIRED"
	CodeForbidden          Code = "FORBIDDEN"
	CodeInternal           Code = "INTERNAL_ERROR"
	CodeValidation         Code = "VALIDATION_ERROR"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeNotFound           Code = "NOT_FOUND"
	CodeConflict           Code = "CONFLICT"
	CodeMethodNotAllowed   Code = "METHOD_NOT_ALLOWED"
	CodeTooManyRequests    Code = "TOO_MANY_REQUESTS"
	CodePayloadTooLarge    Code = "PAYLOAD_TOO_LARGE"
	CodeTimeout            Code = "REQUEST_TIMEOUT"
)

// Client-facing messages shared by the auth pipeline.
const (
	MsgMissingAuthHeader       = "Missing or invalid authorization header"
	MsgInvalidToken            = "Invalid token"
	MsgTokenExpired            = "Token expired"
	MsgNotAuthenticated        = "User not authenticated"
	MsgInsufficientPermissions = "Insufficient permissions"
	MsgInternal                = "Internal Server Error"
	MsgTimeout                 = "Request timed out"
)

const maxStackDepth = 32

// AppError is a failure with an HTTP status, a stable code and an optional
// diagnostic payload. Values are not modified after construction.
type AppError struct {
	Status  int
	Code    Code
	Message string
	Details map[string]interface{}
	Err     error

	stack []uintptr
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an AppError with the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithDetails returns a copy of e carrying details.
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	cp := *e
	cp.Details = make(map[string]interface{}, len(details))
	for k, v := range details {
		cp.Details[k] = v
	}
	return &cp
}

// StackTrace renders the call stack captured when the error was created.
func (e *AppError) StackTrace() string {
	if len(e.stack) == 0 {
		return ""
	}
	var b strings.Builder
	frames := runtime.CallersFrames(e.stack)
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&b, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
	}
	return b.String()
}

// New creates an AppError and records the caller's stack.
func New(status int, code Code, message string) *AppError {
	return newAppError(status, code, message, nil)
}

// Wrap creates an AppError around an underlying cause.
func Wrap(status int, code Code, message string, err error) *AppError {
	return newAppError(status, code, message, err)
}

func newAppError(status int, code Code, message string, err error) *AppError {
	pcs := make([]uintptr, maxStackDepth)
	// skip runtime.Callers, newAppError and the exported constructor
	n := runtime.Callers(3, pcs)
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
		stack:   pcs[:n],
	}
}

// Unauthorized reports a missing or unverifiable caller identity.
func Unauthorized(message string) *AppError {
	return newAppError(http.StatusUnauthorized, CodeUnauthorized, message, nil)
}

// InvalidToken reports a credential whose signature or structure is bad.
func InvalidToken(err error) *AppError {
	return newAppError(http.StatusUnauthorized, CodeInvalidToken, MsgInvalidToken, err)
}

// TokenExpired reports a correctly signed credential past its expiry.
func TokenExpired(err error) *AppError {
	return newAppError(http.StatusUnauthorized, CodeTokenExpired, MsgTokenExpired, err)
}

// Forbidden reports a verified caller lacking permission.
func Forbidden(message string) *AppError {
	return newAppError(http.StatusForbidden, CodeForbidden, message, nil)
}

// InvalidCredentials reports a failed login.
func InvalidCredentials() *AppError {
	return newAppError(http.StatusUnauthorized, CodeInvalidCredentials, "Invalid email or password", nil)
}

// Validation reports a malformed request with per-field details.
func Validation(message string, details map[string]interface{}) *AppError {
	e := newAppError(http.StatusBadRequest, CodeValidation, message, nil)
	e.Details = details
	return e
}

// NotFound reports a missing resource or route.
func NotFound(message string) *AppError {
	return newAppError(http.StatusNotFound, CodeNotFound, message, nil)
}

// Conflict reports a uniqueness violation.
func Conflict(message string) *AppError {
	return newAppError(http.StatusConflict, CodeConflict, message, nil)
}

// TooManyRequests reports a rate-limited client.
func TooManyRequests() *AppError {
	return newAppError(http.StatusTooManyRequests, CodeTooManyRequests, "Too many requests, please try again later", nil)
}

// PayloadTooLarge reports a request body over the configured limit.
func PayloadTooLarge(limit int64) *AppError {
	return newAppError(http.StatusRequestEntityTooLarge, CodePayloadTooLarge,
		fmt.Sprintf("Request body exceeds %d bytes", limit), nil)
}

// Timeout reports a request that ran past its deadline. The cause stays in
// the log; clients only see the fixed message.
func Timeout(err error) *AppError {
	return newAppError(http.StatusGatewayTimeout, CodeTimeout, MsgTimeout, err)
}

// Internal wraps an unexpected failure.
func Internal(err error) *AppError {
	return newAppError(http.StatusInternalServerError, CodeInternal, internalMessage(err), err)
}

// From normalizes any error into an AppError. An AppError anywhere in the
// chain is returned as-is, an expired deadline becomes REQUEST_TIMEOUT, and
// anything else becomes INTERNAL_ERROR.
func From(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return newAppError(http.StatusGatewayTimeout, CodeTimeout, MsgTimeout, err)
	}
	return newAppError(http.StatusInternalServerError, CodeInternal, internalMessage(err), err)
}

// IsCode reports whether err carries an AppError with the given code.
func IsCode(err error, code Code) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

func internalMessage(err error) string {
	if err == nil || err.Error() == "" {
		return MsgInternal
	}
	return err.Error()
}
