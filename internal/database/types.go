package database

import (
	"time"

	"github.com/kozaktomas/photo-sheet/internal/layout"
)

// User is an account. Guests have no e-mail or password and cannot store
// presets.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	GoogleID     string
	Verified     bool
	Guest        bool
	CreatedAt    time.Time
}

// CanStorePresets reports whether the account may save presets.
func (u *User) CanStorePresets() bool {
	return u != nil && !u.Guest && u.Verified
}

// Preset is a named set of layout settings saved by a user.
type Preset struct {
	ID        string
	UserID    string
	Name      string
	Settings  layout.Settings
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StoredSession is the persisted form of a login session.
type StoredSession struct {
	ID        string
	UserID    string
	Guest     bool
	CreatedAt time.Time
	ExpiresAt time.Time
}
