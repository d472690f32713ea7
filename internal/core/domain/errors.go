package domain

import "errors"

var (
	// ErrNotFound means an identifier did not resolve to a stored todo.
	ErrNotFound = errors.New("todo not found")

	// ErrValidation means the input was rejected before reaching the store.
	ErrValidation = errors.New("validation failed")
)
