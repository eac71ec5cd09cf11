package constants

import "time"

// Session constants
const (
	// SessionCookieName is the name of the signed session cookie
	SessionCookieName = "photo_sheet_session"

	// SessionTTL is how long a login session lasts
	SessionTTL = 24 * time.Hour

	// GuestSessionTTL is how long a guest session lasts
	GuestSessionTTL = 4 * time.Hour

	// SessionCleanupInterval is how often expired sessions are purged
	SessionCleanupInterval = 15 * time.Minute
)

// File upload constants
const (
	// MaxUploadSize is the maximum file upload size in bytes (20MB)
	MaxUploadSize = 20 << 20

	// MaxJSONBodySize is the maximum accepted JSON request body in bytes
	MaxJSONBodySize = 1 << 20
)
