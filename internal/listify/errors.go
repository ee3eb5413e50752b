package listify

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")

	// ErrReminderInPast is returned when a reminder's fire time is not
	// strictly after the current time.
	ErrReminderInPast = errors.New("reminder time is not in the future")

	// ErrRecordNotFound is returned by a RecordStore when no record has
	// been written under the requested key yet.
	ErrRecordNotFound = errors.New("record not found")

	// ErrNotifierUnavailable is returned by a Notifier that cannot deliver
	// alerts in the current environment.
	ErrNotifierUnavailable = errors.New("notification facility unavailable")
)

// Error carries a human-readable message alongside one of the sentinel
// errors above, so callers can match with errors.Is.
type Error struct {
	Err     error
	Message string
	Field   string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func notFound(resource, key string) *Error {
	return &Error{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, key),
	}
}

func validationFailed(field, message string) *Error {
	return &Error{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func conflict(resource, key string) *Error {
	return &Error{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s already exists: %s", resource, key),
	}
}
