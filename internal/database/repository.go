package database

import (
	"context"
)

// UserReader provides read-only access to accounts
type UserReader interface {
	// GetUser retrieves a user by ID, returns ErrNotFound if missing
	GetUser(ctx context.Context, id string) (*User, error)
	// GetUserByEmail retrieves a user by normalized e-mail address
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	// GetUserByGoogleID retrieves a user by Google subject ID
	GetUserByGoogleID(ctx context.Context, googleID string) (*User, error)
}

// UserWriter provides write access to accounts
type UserWriter interface {
	UserReader

	// CreateUser stores a new user, assigning ID and CreatedAt when empty.
	// Returns ErrConflict when the e-mail or Google ID is taken.
	CreateUser(ctx context.Context, user *User) error

	// UpdateUser overwrites the mutable fields of an existing user
	UpdateUser(ctx context.Context, user *User) error
}

// PresetReader provides read-only access to saved presets
type PresetReader interface {
	// ListPresets returns the user's presets ordered by name
	ListPresets(ctx context.Context, userID string) ([]Preset, error)
	// GetPreset returns one of the user's presets, ErrNotFound otherwise
	GetPreset(ctx context.Context, userID, id string) (*Preset, error)
}

// PresetWriter provides write access to saved presets
type PresetWriter interface {
	PresetReader

	// CreatePreset stores a new preset, assigning ID and timestamps.
	// Returns ErrConflict for a duplicate name and ErrLimitReached when the
	// user already has the maximum number of presets.
	CreatePreset(ctx context.Context, preset *Preset) error

	// UpdatePreset renames a preset or replaces its settings
	UpdatePreset(ctx context.Context, preset *Preset) error

	// DeletePreset removes one of the user's presets
	DeletePreset(ctx context.Context, userID, id string) error
}

// SessionRepository persists login sessions so they survive restarts
type SessionRepository interface {
	// Save stores or replaces a session
	Save(ctx context.Context, session StoredSession) error
	// Get returns a live session, or nil if missing or expired
	Get(ctx context.Context, id string) (*StoredSession, error)
	// Delete removes a session
	Delete(ctx context.Context, id string) error
	// DeleteExpired removes expired sessions and returns how many were removed
	DeleteExpired(ctx context.Context) (int64, error)
}
