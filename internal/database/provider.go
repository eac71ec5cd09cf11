package database

import (
	"context"
	"errors"
	"sync"
)

// Backend bundles the repository constructors of one storage backend.
// Backends register themselves so this package does not import them.
type Backend struct {
	Name     string
	Users    func() UserWriter
	Presets  func() PresetWriter
	Sessions func() SessionRepository
}

var (
	backendMu sync.RWMutex
	backend   *Backend
)

var errNotInitialized = errors.New("storage backend not initialized")

// RegisterBackend makes b the active storage backend.
func RegisterBackend(b Backend) {
	backendMu.Lock()
	defer backendMu.Unlock()
	backend = &b
}

// ResetBackend unregisters the active backend.
func ResetBackend() {
	backendMu.Lock()
	defer backendMu.Unlock()
	backend = nil
}

// IsInitialized returns whether a backend has been registered.
func IsInitialized() bool {
	backendMu.RLock()
	defer backendMu.RUnlock()
	return backend != nil
}

// BackendName returns the name of the active backend, or "" if none.
func BackendName() string {
	backendMu.RLock()
	defer backendMu.RUnlock()
	if backend == nil {
		return ""
	}
	return backend.Name
}

func active() (*Backend, error) {
	backendMu.RLock()
	defer backendMu.RUnlock()
	if backend == nil {
		return nil, errNotInitialized
	}
	return backend, nil
}

// GetUserWriter returns a UserWriter from the active backend
func GetUserWriter(ctx context.Context) (UserWriter, error) {
	b, err := active()
	if err != nil {
		return nil, err
	}
	if b.Users == nil {
		return nil, errors.New(b.Name + " user repository not registered")
	}
	return b.Users(), nil
}

// GetPresetWriter returns a PresetWriter from the active backend
func GetPresetWriter(ctx context.Context) (PresetWriter, error) {
	b, err := active()
	if err != nil {
		return nil, err
	}
	if b.Presets == nil {
		return nil, errors.New(b.Name + " preset repository not registered")
	}
	return b.Presets(), nil
}

// GetSessionRepository returns the session repository of the active backend,
// or nil if it does not persist sessions.
func GetSessionRepository() SessionRepository {
	b, err := active()
	if err != nil || b.Sessions == nil {
		return nil
	}
	return b.Sessions()
}
