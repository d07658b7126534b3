package models

import "fmt"

// ValidationError is a user-visible rule violation. Handlers surface it as
// 422 with the message untouched; anything else stays a 500.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
