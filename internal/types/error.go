package types

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services. Ownership scoping is deliberately
// conflated with absence: a record owned by someone else is ErrNotFound.
var (
	ErrNotFound           = errors.New("not found")
	ErrEmailExists        = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSelfDelete         = errors.New("cannot delete your own account")
)

// ValidationError marks rejected input. Message is safe to surface to the
// client verbatim.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError wraps an optional cause with a client-facing message.
func NewValidationError(message string, err error) *ValidationError {
	return &ValidationError{Message: message, Err: err}
}

// CustomError carries an HTTP status through the fiber error handler.
type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}
