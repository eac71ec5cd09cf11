package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/kozaktomas/photo-sheet/internal/constants"
	"github.com/kozaktomas/photo-sheet/internal/kvstore"
)

var (
	ErrInvalidCode     = errors.New("invalid verification code")
	ErrTooManyAttempts = errors.New("too many verification attempts")
	ErrCodeExpired     = errors.New("verification code expired or not issued")
)

// OTPManager issues and checks one-time e-mail verification codes. Only a
// hash of each code is stored.
type OTPManager struct {
	store       kvstore.Store
	ttl         time.Duration
	maxAttempts int64
}

// NewOTPManager creates a manager with the default code lifetime and attempt
// limit.
func NewOTPManager(store kvstore.Store) *OTPManager {
	return &OTPManager{
		store:       store,
		ttl:         constants.OTPTTL,
		maxAttempts: constants.OTPMaxAttempts,
	}
}

func codeKey(email string) string     { return "otp:code:" + email }
func attemptsKey(email string) string { return "otp:attempts:" + email }

func hashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// Issue generates a new code for email, replacing any earlier one and
// resetting the attempt counter.
func (m *OTPManager) Issue(ctx context.Context, email string) (string, error) {
	code, err := generateCode(constants.OTPLength)
	if err != nil {
		return "", err
	}
	if err := m.store.Delete(ctx, attemptsKey(email)); err != nil {
		return "", fmt.Errorf("failed to reset attempts: %w", err)
	}
	if err := m.store.Set(ctx, codeKey(email), hashCode(code), m.ttl); err != nil {
		return "", fmt.Errorf("failed to store code: %w", err)
	}
	return code, nil
}

// Verify checks code for email. A correct code is consumed.
func (m *OTPManager) Verify(ctx context.Context, email, code string) error {
	stored, err := m.store.Get(ctx, codeKey(email))
	if errors.Is(err, kvstore.ErrNotFound) {
		return ErrCodeExpired
	}
	if err != nil {
		return fmt.Errorf("failed to load code: %w", err)
	}

	attempts, err := m.store.Incr(ctx, attemptsKey(email), m.ttl)
	if err != nil {
		return fmt.Errorf("failed to count attempt: %w", err)
	}
	// A locked code stays stored so every further attempt keeps failing
	// until Issue replaces it or it expires.
	if attempts > m.maxAttempts {
		return ErrTooManyAttempts
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(hashCode(code))) != 1 {
		return ErrInvalidCode
	}

	if _, err := m.store.Take(ctx, codeKey(email)); err != nil {
		// Lost a race with a concurrent successful Verify.
		return ErrCodeExpired
	}
	_ = m.store.Delete(ctx, attemptsKey(email))
	return nil
}

func generateCode(digits int) (string, error) {
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%0*d", digits, n), nil
}
