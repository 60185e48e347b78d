package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates the caller supplied an out-of-range value.
	ErrValidation = errors.New("validation failed")
)
