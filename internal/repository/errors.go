package repository

import "errors"

var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates an insert violated a uniqueness constraint.
	ErrConflict = errors.New("already exists")
)
