package apperror

import (
	"fmt"
	"net/http"
)

const typeBase = "https://fintrack.app/errors/"

// AppError represents RFC 7807 Problem Details
type AppError struct {
	Type      string            `json:"type"`
	Title     string            `json:"title"`
	Status    int               `json:"status"`
	Detail    string            `json:"detail"`
	Instance  string            `json:"instance,omitempty"`
	Action    string            `json:"action,omitempty"`
	Errors    map[string]string `json:"errors,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	err       error             // internal error for logging
}

func (e *AppError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.Title, e.err)
	}
	return e.Title
}

func (e *AppError) Unwrap() error {
	return e.err
}

func (e *AppError) WithError(err error) *AppError {
	e.err = err
	return e
}

func (e *AppError) WithRequestID(id string) *AppError {
	e.RequestID = id
	return e
}

func (e *AppError) WithErrors(errs map[string]string) *AppError {
	e.Errors = errs
	return e
}

func (e *AppError) WithInstance(instance string) *AppError {
	e.Instance = instance
	return e
}

func newError(slug, title string, status int, detail, action string) *AppError {
	return &AppError{
		Type:   typeBase + slug,
		Title:  title,
		Status: status,
		Detail: detail,
		Action: action,
	}
}

func ValidationError(detail, action string) *AppError {
	return newError("validation", "Invalid request", http.StatusBadRequest, detail, action)
}

func AuthenticationError(detail, action string) *AppError {
	return newError("authentication", "Authentication failed", http.StatusUnauthorized, detail, action)
}

func AuthorizationError(detail, action string) *AppError {
	return newError("authorization", "Access denied", http.StatusForbidden, detail, action)
}

func NotFoundError(resource string) *AppError {
	return newError("not-found", "Not found", http.StatusNotFound,
		fmt.Sprintf("%s not found", resource),
		"Check the identifier and try again")
}

func ConflictError(detail, action string) *AppError {
	return newError("conflict", "Conflict", http.StatusConflict, detail, action)
}

func RateLimitError() *AppError {
	return newError("rate-limit", "Too many requests", http.StatusTooManyRequests,
		"Too many requests in a short period",
		"Wait a moment and try again")
}

// TooManyRequestsError is RateLimitError with a caller-supplied detail
func TooManyRequestsError(detail, action string) *AppError {
	return newError("rate-limit", "Too many requests", http.StatusTooManyRequests, detail, action)
}

func InternalError(detail, action string) *AppError {
	return newError("internal", "Internal error", http.StatusInternalServerError, detail, action)
}

func ServiceUnavailableError(detail, action string) *AppError {
	return newError("service-unavailable", "Service unavailable", http.StatusServiceUnavailable, detail, action)
}
