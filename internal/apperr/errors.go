// Package apperr provides unified error handling for the PPM core.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code.
type ErrorCode string

const (
	ErrCodeValidation            ErrorCode = "VALIDATION_ERROR"
	ErrCodeDuplicate             ErrorCode = "DUPLICATE"
	ErrCodeNotFound              ErrorCode = "NOT_FOUND"
	ErrCodeConflict              ErrorCode = "CONFLICT"
	ErrCodeUnauthenticated       ErrorCode = "UNAUTHENTICATED"
	ErrCodeForbidden             ErrorCode = "FORBIDDEN"
	ErrCodeRateLimitExceeded     ErrorCode = "RATE_LIMIT_EXCEEDED"
	ErrCodeDependencyUnavailable ErrorCode = "DEPENDENCY_UNAVAILABLE"
	ErrCodeTimeout               ErrorCode = "TIMEOUT"
	ErrCodeInternal              ErrorCode = "INTERNAL_ERROR"
)

// ServiceError is a structured error carrying a taxonomy code, a message,
// an HTTP status, and optional machine-readable details.
type ServiceError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	HTTPStatus int                    `json:"-"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Err        error                  `json:"-"`
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// WithDetails attaches a structured detail and returns the receiver for chaining.
func (e *ServiceError) WithDetails(key string, value interface{}) *ServiceError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func New(code ErrorCode, message string, httpStatus int) *ServiceError {
	return &ServiceError{Code: code, Message: message, HTTPStatus: httpStatus}
}

func Wrap(code ErrorCode, message string, httpStatus int, err error) *ServiceError {
	return &ServiceError{Code: code, Message: message, HTTPStatus: httpStatus, Err: err}
}

// Validation / Duplicate

func Validation(field, reason string) *ServiceError {
	return New(ErrCodeValidation, "validation failed", http.StatusBadRequest).
		WithDetails("field", field).
		WithDetails("reason", reason)
}

func ValidationMessage(message string) *ServiceError {
	return New(ErrCodeValidation, message, http.StatusBadRequest)
}

func Duplicate(resource, key string) *ServiceError {
	return New(ErrCodeDuplicate, "duplicate resource", http.StatusConflict).
		WithDetails("resource", resource).
		WithDetails("key", key)
}

// Resource

func NotFound(resource, id string) *ServiceError {
	return New(ErrCodeNotFound, "resource not found", http.StatusNotFound).
		WithDetails("resource", resource).
		WithDetails("id", id)
}

func Conflict(message string) *ServiceError {
	return New(ErrCodeConflict, message, http.StatusConflict)
}

// Auth

func Unauthenticated(message string) *ServiceError {
	return New(ErrCodeUnauthenticated, message, http.StatusUnauthorized)
}

func Forbidden(permission string) *ServiceError {
	return New(ErrCodeForbidden, "permission denied", http.StatusForbidden).
		WithDetails("permission", permission)
}

// Service-level

func RateLimitExceeded(limit int, window string) *ServiceError {
	return New(ErrCodeRateLimitExceeded, "rate limit exceeded", http.StatusTooManyRequests).
		WithDetails("limit", limit).
		WithDetails("window", window)
}

func DependencyUnavailable(dependency string, err error) *ServiceError {
	return Wrap(ErrCodeDependencyUnavailable, "dependency unavailable", http.StatusServiceUnavailable, err).
		WithDetails("dependency", dependency)
}

func Timeout(operation string) *ServiceError {
	return New(ErrCodeTimeout, "operation timed out", http.StatusGatewayTimeout).
		WithDetails("operation", operation)
}

func Internal(message string, err error) *ServiceError {
	return Wrap(ErrCodeInternal, message, http.StatusInternalServerError, err)
}

// Helpers

func IsServiceError(err error) bool {
	var serviceErr *ServiceError
	return errors.As(err, &serviceErr)
}

func GetServiceError(err error) *ServiceError {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr
	}
	return nil
}

func GetHTTPStatus(err error) int {
	if serviceErr := GetServiceError(err); serviceErr != nil {
		return serviceErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

func Is(err error, code ErrorCode) bool {
	if se := GetServiceError(err); se != nil {
		return se.Code == code
	}
	return false
}
