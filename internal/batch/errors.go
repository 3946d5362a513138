package batch

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the referenced batch does not exist.
	ErrNotFound = errors.New("batch not found")

	// ErrInvalidState is returned when a trigger is not valid from the
	// batch's current status, including when a concurrent transition won
	// the race.
	ErrInvalidState = errors.New("batch status does not allow this action")

	// ErrStaleStatus is returned by the repository when a conditional
	// update matched no row because the status changed since it was read.
	// The workflow surfaces it as ErrInvalidState.
	ErrStaleStatus = errors.New("batch status changed since it was read")

	// ErrTokenMismatch is returned when a presented confirmation token does
	// not authorize the pending order.
	ErrTokenMismatch = errors.New("confirmation token does not match")
)

// ValidationError reports malformed or missing input. No mutation has been
// performed when it is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalidf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
