// File: internal/common/errors.go
package common

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// APIError represents a standard structure for API errors.
type APIError struct {
	StatusCode int         `json:"-"`
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("APIError: StatusCode=%d, Code=%s, Message=%s", e.StatusCode, e.Code, e.Message)
}

func NewAPIError(statusCode int, code, message string) *APIError {
	return &APIError{StatusCode: statusCode, Code: code, Message: message}
}

// WithDetails returns a copy of e carrying details, leaving the sentinel untouched.
func (e *APIError) WithDetails(details interface{}) *APIError {
	clone := *e
	clone.Details = details
	return &clone
}

// WithMessage returns a copy of e with a different message.
func (e *APIError) WithMessage(message string) *APIError {
	clone := *e
	clone.Message = message
	return &clone
}

var (
	ErrBadRequest      = NewAPIError(http.StatusBadRequest, "BAD_REQUEST", "The request is invalid.")
	ErrUnauthorized    = NewAPIError(http.StatusUnauthorized, "UNAUTHORIZED", "Authentication is required and has failed or has not yet been provided.")
	ErrForbidden       = NewAPIError(http.StatusForbidden, "FORBIDDEN", "You do not have permission to access this resource.")
	ErrNotFound        = NewAPIError(http.StatusNotFound, "NOT_FOUND", "The requested resource could not be found.")
	ErrConflict        = NewAPIError(http.StatusConflict, "CONFLICT", "A conflict occurred with the current state of the resource.")
	ErrInternalServer  = NewAPIError(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "An unexpected error occurred on the server.")
	ErrTooManyRequests = NewAPIError(http.StatusTooManyRequests, "TOO_MANY_REQUESTS", "Too many requests. Please slow down and try again.")
)

// Error codes returned by the registration endpoints.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeUploadFailed       = "UPLOAD_FAILED"
	CodeRegistrationFailed = "REGISTRATION_FAILED"
)

func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func NewValidationAPIError(details interface{}) *APIError {
	return &APIError{
		StatusCode: http.StatusUnprocessableEntity,
		Code:       CodeValidation,
		Message:    "Input validation failed.",
		Details:    details,
	}
}

// NewUploadAPIError reports a document upload that the storage backend rejected.
func NewUploadAPIError(message string) *APIError {
	return &APIError{
		StatusCode: http.StatusBadGateway,
		Code:       CodeUploadFailed,
		Message:    message,
	}
}

// NewRegistrationAPIError reports a failed call to the marketplace API.
// statusCode should already be mapped to something the client can act on.
func NewRegistrationAPIError(statusCode int, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Code:       CodeRegistrationFailed,
		Message:    message,
	}
}

// FormatValidationErrors converts validator.ValidationErrors into a map keyed by
// the field name reported by the validator (the JSON name with NewValidator).
func FormatValidationErrors(errs validator.ValidationErrors) map[string]string {
	errorMap := make(map[string]string)
	for _, e := range errs {
		field := e.Field()
		var message string
		switch e.Tag() {
		case "required":
			message = fmt.Sprintf("The %s field is required.", strings.ToLower(field))
		case "email":
			message = fmt.Sprintf("The %s field must be a valid email address.", strings.ToLower(field))
		case "min":
			message = fmt.Sprintf("The %s field must be at least %s characters long.", strings.ToLower(field), e.Param())
		case "max":
			message = fmt.Sprintf("The %s field may not be greater than %s characters.", strings.ToLower(field), e.Param())
		case "oneof":
			message = fmt.Sprintf("The %s field must be one of the following values: %s.", strings.ToLower(field), e.Param())
		case "eqfield":
			message = "Passwords do not match."
		default:
			message = fmt.Sprintf("Field validation for '%s' failed on the '%s' tag.", field, e.Tag())
		}
		errorMap[field] = message
	}
	return errorMap
}
