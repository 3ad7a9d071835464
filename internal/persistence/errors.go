package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested key has no stored value.
	ErrNotFound = errors.New("persistence: not found")
)
