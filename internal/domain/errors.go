package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means a lookup by id or reference matched nothing.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateReference is returned by the booking store when the unique
	// index on booking_reference rejects an insert. The allocator retries it;
	// callers above the allocator never see it.
	ErrDuplicateReference = errors.New("duplicate booking reference")

	// ErrDependency means the store was unreachable, timed out, or failed in a
	// way the caller cannot fix. Maps to a 500 with a generic message.
	ErrDependency = errors.New("store dependency failed")
)

// ValidationError reports a client-supplied field that failed a required-field
// or shape check. Detected before any store mutation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("missing required field: %s", e.Field)
	}
	return fmt.Sprintf("invalid field %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
