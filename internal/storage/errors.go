package storage

import "errors"

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when a record with the same link is already
	// stored.
	ErrDuplicate = errors.New("duplicate link")
)
