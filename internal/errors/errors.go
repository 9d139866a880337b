package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// Sentinel errors for the verification subsystem. Callers branch on
// these with errors.Is to pick a fallback strategy instead of guessing
// why a load produced an empty store.
var (
	// Acceptance store load/save taxonomy.
	ErrStoreNotFound = errors.New("acceptance store not found")
	ErrStoreParse    = errors.New("acceptance store unparsable")
	ErrStoreIO       = errors.New("acceptance store I/O failure")

	// Verification flow.
	ErrInvalidAccessCode = errors.New("invalid access code")
	ErrPromptCancelled   = errors.New("prompt cancelled")
	ErrNotAccepted       = errors.New("usage terms not accepted")

	// Expiration gate.
	ErrBuildExpired     = errors.New("build expired")
	ErrNoExpiryMetadata = errors.New("missing or malformed expiration metadata")
)

// APIError represents a structured API error response.
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render.
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// New creates a new APIError.
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates a new APIError with additional details.
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// Predefined responses for the status API.
var (
	ErrInvalidRequest = New(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format")
	ErrNotAuthorized  = New(http.StatusPreconditionRequired, "NOT_AUTHORIZED", "This version has not been authorized. Enter an access code to continue")
	ErrInvalidCode    = New(http.StatusBadRequest, "INVALID_ACCESS_CODE", "The provided access code is not valid for this version")
	ErrExpiredBuild   = New(http.StatusForbidden, "BUILD_EXPIRED", "This build has expired. Please obtain an updated release")
	ErrRateLimited    = New(http.StatusTooManyRequests, "RATE_LIMITED", "Too many activation attempts. Please try again later")
	ErrInternalServer = New(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error")
)

// InvalidRequestWithError creates an invalid request error carrying detail.
func InvalidRequestWithError(err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format", err.Error())
}

// NotFoundError creates a not found error for the named resource.
func NotFoundError(resource string) *APIError {
	return NewWithDetails(http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("%s not found", resource), resource)
}
