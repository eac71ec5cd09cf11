// Package kvstore provides short-lived key/value storage for verification
// codes and OAuth state tokens.
//
// Two backends are available:
//   - memory: process-local, for development and single-instance deployments
//   - redis: shared across instances
package kvstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key does not exist or has expired.
var ErrNotFound = errors.New("key not found")

// Store is the interface for expiring key/value backends.
type Store interface {
	// Set stores value under key for ttl, replacing any previous value.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Get returns the value stored under key or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Take returns the value stored under key and deletes it atomically.
	Take(ctx context.Context, key string) (string, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Incr increments the counter under key and returns the new value.
	// A new counter expires after ttl.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// Close releases backend resources.
	Close() error
}
