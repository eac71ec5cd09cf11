// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

import "time"

// Image processing constants
const (
	// MaxImagePixels is the largest decoded image accepted (width * height)
	MaxImagePixels = 40_000_000

	// DefaultJPEGQuality is the JPEG quality used for exports when not configured
	DefaultJPEGQuality = 92

	// CutGuideWidthPx is the stroke width of the optional cut guides at print DPI
	CutGuideWidthPx = 1
)

// Account constants
const (
	// MinPasswordLength is the minimum accepted password length
	MinPasswordLength = 8

	// OTPLength is the number of digits in an e-mail verification code
	OTPLength = 6

	// OTPTTL is how long a verification code stays valid
	OTPTTL = 10 * time.Minute

	// OTPMaxAttempts is the number of wrong guesses allowed per code
	OTPMaxAttempts = 5

	// OAuthStateTTL is how long an OAuth state token stays valid
	OAuthStateTTL = 10 * time.Minute
)

// Preset constants
const (
	// MaxPresetsPerUser is the number of presets a single account may store
	MaxPresetsPerUser = 50

	// MaxPresetNameLength is the maximum preset name length in runes
	MaxPresetNameLength = 80
)

// Batch rendering constants
const (
	// DefaultConcurrency is the default number of parallel render workers
	DefaultConcurrency = 4
)
