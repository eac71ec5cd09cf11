package database

import "errors"

var (
	// ErrNotFound is returned when a record does not exist or belongs to
	// another user.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a unique e-mail, Google account or preset
	// name is already taken.
	ErrConflict = errors.New("already exists")

	// ErrLimitReached is returned when a user already has the maximum number
	// of presets.
	ErrLimitReached = errors.New("preset limit reached")

	// ErrInvalidName is returned for empty or overlong preset names.
	ErrInvalidName = errors.New("invalid preset name")
)
