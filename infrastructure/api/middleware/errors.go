package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ragline/ragline/domain/chat"
	"github.com/ragline/ragline/domain/document"
	"github.com/ragline/ragline/infrastructure/runtime"
)

// APIError is an error with an associated HTTP status code.
type APIError struct {
	code    int
	message string
	cause   error
}

// NewAPIError creates an APIError. cause may be nil.
func NewAPIError(code int, message string, cause error) *APIError {
	return &APIError{code: code, message: message, cause: cause}
}

// Code returns the HTTP status code.
func (e *APIError) Code() int { return e.code }

// Message returns the client-facing message.
func (e *APIError) Message() string { return e.message }

func (e *APIError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("api error %d: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("api error %d: %s", e.code, e.message)
}

func (e *APIError) Unwrap() error { return e.cause }

// ErrAuthentication is the sentinel matched by all authentication failures.
var ErrAuthentication = errors.New("authentication failed")

// AuthenticationError reports a failed authentication attempt.
type AuthenticationError struct {
	reason string
}

// NewAuthenticationError creates an AuthenticationError.
func NewAuthenticationError(reason string) *AuthenticationError {
	return &AuthenticationError{reason: reason}
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.reason)
}

func (e *AuthenticationError) Is(target error) bool { return target == ErrAuthentication }

// ErrServer is the sentinel matched by all server-side errors.
var ErrServer = errors.New("server error")

// ServerError reports a server-side failure with an explicit status code.
type ServerError struct {
	status  int
	message string
}

// NewServerError creates a ServerError.
func NewServerError(status int, message string) *ServerError {
	return &ServerError{status: status, message: message}
}

// StatusCode returns the HTTP status code.
func (e *ServerError) StatusCode() int { return e.status }

// Message returns the client-facing message.
func (e *ServerError) Message() string { return e.message }

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.status, e.message)
}

func (e *ServerError) Is(target error) bool { return target == ErrServer }

// errorResponse is the JSON body written for failed requests.
type errorResponse struct {
	Error string `json:"error"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// WriteError maps err to an HTTP status and writes a JSON error body.
// Unrecognized errors become a 500 with a generic message so internals
// do not leak to clients.
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	status, message := statusFor(err)
	if status >= http.StatusInternalServerError && logger != nil {
		logger.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.String("error", err.Error()),
		)
	}
	WriteJSON(w, status, errorResponse{Error: message})
}

func statusFor(err error) (int, string) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code(), apiErr.Message()
	}
	var srvErr *ServerError
	if errors.As(err, &srvErr) {
		return srvErr.StatusCode(), srvErr.Message()
	}

	var noModel *runtime.NoCompatibleModelError
	var genErr *chat.GenerationError
	switch {
	case errors.Is(err, ErrAuthentication):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, document.ErrDocumentNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, document.ErrEmptyDocument):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, document.ErrDimensionMismatch):
		return http.StatusConflict, err.Error()
	case errors.Is(err, runtime.ErrNoModelsFound):
		return http.StatusNotFound, err.Error()
	case errors.As(err, &noModel):
		return http.StatusNotFound, noModel.Error()
	case errors.As(err, &genErr):
		return http.StatusBadGateway, genErr.Error()
	}
	return http.StatusInternalServerError, "internal server error"
}
