package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness conflict on insert.
	ErrAlreadyExists = errors.New("already exists")
	// ErrForbidden indicates the acting role may not perform the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrOrderTaken indicates the order was claimed by another courier first.
	ErrOrderTaken = errors.New("order already taken")
	// ErrEmptyBody indicates a message with no content.
	ErrEmptyBody = errors.New("message body is empty")
)

// ValidationError carries field-level validation messages. The request is
// expected to be re-rendered with prior input retained; nothing is written.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	for field, msg := range e.Fields {
		return field + ": " + msg
	}
	return "validation failed"
}

// NewValidationError builds a single-field validation error.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}
