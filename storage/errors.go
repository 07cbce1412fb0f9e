package storage

import "errors"

var (
	// ErrNotFound indicates a requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrCorruptRecord indicates a stored record failed to
	// deserialize.
	ErrCorruptRecord = errors.New("corrupt stored record")
)
