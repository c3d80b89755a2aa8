package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrConflict      = errors.New("conflict")
	ErrUpstream      = errors.New("upstream provider error")

	ErrInvalidCredentials = fmt.Errorf("invalid login credentials: %w", ErrUnauthorized)
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// UserMessage turns any error into the human readable string shown to the user
// in the uniform {errorMessage} response. Unknown errors never leak internals.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		if len(ve.Errors) > 0 {
			return ve.Errors[0].Message
		}
		return "Invalid input"
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid login credentials"
	case errors.Is(err, ErrUnauthorized):
		return "You must be logged in"
	case errors.Is(err, ErrNotFound):
		return "Note not found"
	case errors.Is(err, ErrConflict):
		return "This note was changed somewhere else, reload it and try again"
	case errors.Is(err, ErrAlreadyExists):
		return "An account with this email already exists"
	case errors.Is(err, ErrUpstream):
		return "The assistant is unavailable right now, please try again"
	default:
		return "Something went wrong"
	}
}

// HTTPStatus maps an error to the status code sent alongside its message.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict), errors.Is(err, ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
