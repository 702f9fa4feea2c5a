package repository

import "errors"

var (
	// ErrNotFound indicates an entity was not located.
	ErrNotFound = errors.New("repository: not found")
	// ErrConflict indicates a uniqueness constraint was violated.
	ErrConflict = errors.New("repository: conflict")
	// ErrInvalidArgument indicates a referenced entity is missing or a value was rejected by the store.
	ErrInvalidArgument = errors.New("repository: invalid argument")
)
