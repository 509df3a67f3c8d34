package services

import (
	"errors"
	"fmt"
)

// AuthorizationError means the identity lacks permission for the operation.
// Surfaced as a blunt 403; never retried.
type AuthorizationError struct {
	Reason string
}

func NewAuthorizationError(reason string) error {
	return &AuthorizationError{Reason: reason}
}

func (e *AuthorizationError) Error() string {
	if e.Reason == "" {
		return "access denied"
	}
	return "access denied: " + e.Reason
}

// IsAuthorization reports whether err is an AuthorizationError.
func IsAuthorization(err error) bool {
	var ae *AuthorizationError
	return errors.As(err, &ae)
}

// NotFoundError means a referenced resource id does not exist.
type NotFoundError struct {
	Resource string
}

func NewNotFoundError(resource string) error {
	return &NotFoundError{Resource: resource}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}

// FieldError indicates an error with a specific input field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ValidationError means malformed input; the request state is unchanged and
// field-level detail is surfaced back to the submitter.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, fields ...FieldError) error {
	return &ValidationError{Err: err, Fields: fields}
}

func (e *ValidationError) Error() string {
	if e.Err == nil {
		return "invalid input"
	}
	return e.Err.Error()
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
