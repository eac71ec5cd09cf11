package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/kozaktomas/photo-sheet/internal/constants"
	"github.com/kozaktomas/photo-sheet/internal/kvstore"
)

// StateStore manages single-use OAuth state tokens.
type StateStore struct {
	store kvstore.Store
	ttl   time.Duration
}

// NewStateStore creates a state store with the default token lifetime.
func NewStateStore(store kvstore.Store) *StateStore {
	return &StateStore{store: store, ttl: constants.OAuthStateTTL}
}

func stateKey(state string) string { return "oauth:state:" + state }

// Generate creates and stores a new state token.
func (s *StateStore) Generate(ctx context.Context) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	state := base64.RawURLEncoding.EncodeToString(b)
	if err := s.store.Set(ctx, stateKey(state), "1", s.ttl); err != nil {
		return "", fmt.Errorf("failed to store state: %w", err)
	}
	return state, nil
}

// Validate reports whether state was issued and not yet used. A valid token
// is consumed.
func (s *StateStore) Validate(ctx context.Context, state string) (bool, error) {
	if state == "" {
		return false, nil
	}
	_, err := s.store.Take(ctx, stateKey(state))
	if errors.Is(err, kvstore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check state: %w", err)
	}
	return true, nil
}
