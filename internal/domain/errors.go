package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("permission denied")
	ErrUnauthorized    = errors.New("not authenticated")
	ErrPaymentRequired = errors.New("no remaining credits")
	ErrConflict        = errors.New("conflict")
	ErrWaitTimeout     = errors.New("job still running")
)

// ValidationError carries a user-facing message and the offending fields.
type ValidationError struct {
	Message string
	Fields  []string
}

func NewValidationError(msg string, fields ...string) *ValidationError {
	return &ValidationError{Message: msg, Fields: fields}
}

func (e *ValidationError) Error() string {
	return e.Message
}
