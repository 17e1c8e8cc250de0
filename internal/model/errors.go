package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested record or blob does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAccessDenied indicates the requester may not read or modify the asset.
	ErrAccessDenied = errors.New("access denied")
	// ErrAuthFailed indicates login failure without revealing whether the
	// account exists.
	ErrAuthFailed = errors.New("invalid credentials")
	// ErrDuplicateUsername indicates the username is already taken.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrDuplicateEmail indicates the email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrDuplicateKey indicates a unique-index violation not attributable to
	// a specific field.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrPayloadTooLarge indicates the uploaded file exceeds the configured
	// size limit.
	ErrPayloadTooLarge = errors.New("payload too large")
)

// ValidationError indicates bad or missing user input. The message is safe
// to return to the client.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError with a formatted message.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
