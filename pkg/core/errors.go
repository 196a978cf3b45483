package core

import "errors"

// Common errors.
var (
	ErrNotFound = errors.New("not found")
	ErrReadOnly = errors.New("store is in read-only mode")
)
