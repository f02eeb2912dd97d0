package model

import "errors"

// ValidationError is raised locally, before anything is sent to the store.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

// Is lets errors.Is(err, ErrEmptyTitle) match any empty-title error.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Field == e.Field && t.Reason == e.Reason
}

// ErrEmptyTitle rejects titles that are empty after trimming.
var ErrEmptyTitle = &ValidationError{Field: "title", Reason: "cannot be empty"}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
