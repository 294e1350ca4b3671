package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation            ErrorType = "validation"
	ErrorTypeInvalidPayload        ErrorType = "invalid_payload"
	ErrorTypeUnsupportedSymbology  ErrorType = "unsupported_symbology"
	ErrorTypeCapabilityUnavailable ErrorType = "capability_unavailable"
	ErrorTypeNetwork               ErrorType = "network"
	ErrorTypeTimeout               ErrorType = "timeout"
	ErrorTypeNotFound              ErrorType = "not_found"
	ErrorTypePayloadTooLarge       ErrorType = "payload_too_large"
	ErrorTypeInternal              ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	StatusCode int       `json:"status_code"`
	Cause      error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

func newAppError(t ErrorType, status int, message string, cause error) *AppError {
	return &AppError{
		Type:       t,
		Message:    message,
		StatusCode: status,
		Cause:      cause,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string, cause error) *AppError {
	return newAppError(ErrorTypeValidation, http.StatusBadRequest, message, cause)
}

// NewInvalidPayloadError reports data that the chosen symbology cannot encode.
func NewInvalidPayloadError(message string, cause error) *AppError {
	return newAppError(ErrorTypeInvalidPayload, http.StatusUnprocessableEntity, message, cause)
}

// NewUnsupportedSymbologyError reports a symbology a strategy has no mapping for.
func NewUnsupportedSymbologyError(message string, cause error) *AppError {
	return newAppError(ErrorTypeUnsupportedSymbology, http.StatusUnprocessableEntity, message, cause)
}

// NewCapabilityUnavailableError reports a rendering or decoding backend that failed as a whole.
func NewCapabilityUnavailableError(message string, cause error) *AppError {
	return newAppError(ErrorTypeCapabilityUnavailable, http.StatusServiceUnavailable, message, cause)
}

// NewNetworkError creates a new network error
func NewNetworkError(message string, cause error) *AppError {
	return newAppError(ErrorTypeNetwork, http.StatusBadGateway, message, cause)
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(message string, cause error) *AppError {
	return newAppError(ErrorTypeTimeout, http.StatusGatewayTimeout, message, cause)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string, cause error) *AppError {
	return newAppError(ErrorTypeNotFound, http.StatusNotFound, message, cause)
}

// NewPayloadTooLargeError creates an error for oversized uploads or bodies
func NewPayloadTooLargeError(message string, cause error) *AppError {
	return newAppError(ErrorTypePayloadTooLarge, http.StatusRequestEntityTooLarge, message, cause)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, cause error) *AppError {
	return newAppError(ErrorTypeInternal, http.StatusInternalServerError, message, cause)
}

// IsType checks if the error (or anything it wraps) is an AppError of a specific type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// GetStatusCode extracts the HTTP status code from an error
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
