// Package memory provides a process-local storage backend. It is used when no
// DATABASE_URL is configured and by handler tests.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kozaktomas/photo-sheet/internal/constants"
	"github.com/kozaktomas/photo-sheet/internal/database"
)

// Store keeps users, presets and sessions in maps guarded by one mutex.
type Store struct {
	mu       sync.RWMutex
	users    map[string]*database.User
	presets  map[string]*database.Preset
	sessions map[string]database.StoredSession
	now      func() time.Time

	// Error injection
	GetUserError      error
	CreateUserError   error
	ListPresetsError  error
	CreatePresetError error
	SaveSessionError  error
}

// New creates an empty store.
func New() *Store {
	return &Store{
		users:    make(map[string]*database.User),
		presets:  make(map[string]*database.Preset),
		sessions: make(map[string]database.StoredSession),
		now:      time.Now,
	}
}

// Register makes s the active storage backend.
func Register(s *Store) {
	database.RegisterBackend(database.Backend{
		Name:     "memory",
		Users:    func() database.UserWriter { return s },
		Presets:  func() database.PresetWriter { return s },
		Sessions: func() database.SessionRepository { return s },
	})
}

// --- users ---

func (s *Store) GetUser(ctx context.Context, id string) (*database.User, error) {
	if s.GetUserError != nil {
		return nil, s.GetUserError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) findUser(match func(*database.User) bool) (*database.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*database.User, error) {
	if email == "" {
		return nil, database.ErrNotFound
	}
	return s.findUser(func(u *database.User) bool { return u.Email == email })
}

func (s *Store) GetUserByGoogleID(ctx context.Context, googleID string) (*database.User, error) {
	if googleID == "" {
		return nil, database.ErrNotFound
	}
	return s.findUser(func(u *database.User) bool { return u.GoogleID == googleID })
}

// conflicts reports whether another user already owns u's e-mail or Google
// ID. Caller must hold mu.
func (s *Store) conflicts(u *database.User) bool {
	for _, other := range s.users {
		if other.ID == u.ID {
			continue
		}
		if u.Email != "" && other.Email == u.Email {
			return true
		}
		if u.GoogleID != "" && other.GoogleID == u.GoogleID {
			return true
		}
	}
	return false
}

func (s *Store) CreateUser(ctx context.Context, user *database.User) error {
	if s.CreateUserError != nil {
		return s.CreateUserError
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = s.now()
	}
	if _, exists := s.users[user.ID]; exists || s.conflicts(user) {
		return database.ErrConflict
	}
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *Store) UpdateUser(ctx context.Context, user *database.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[user.ID]
	if !ok {
		return database.ErrNotFound
	}
	if s.conflicts(user) {
		return database.ErrConflict
	}
	cp := *user
	cp.CreatedAt = existing.CreatedAt
	s.users[user.ID] = &cp
	return nil
}

// --- presets ---

func (s *Store) ListPresets(ctx context.Context, userID string) ([]database.Preset, error) {
	if s.ListPresetsError != nil {
		return nil, s.ListPresetsError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []database.Preset
	for _, p := range s.presets {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	slices.SortFunc(out, func(a, b database.Preset) int {
		return strings.Compare(database.PresetKey(a.Name), database.PresetKey(b.Name))
	})
	return out, nil
}

func (s *Store) GetPreset(ctx context.Context, userID, id string) (*database.Preset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.presets[id]
	if !ok || p.UserID != userID {
		return nil, database.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

// nameTaken reports whether the user owns another preset with the same key.
// Caller must hold mu.
func (s *Store) nameTaken(userID, excludeID, name string) bool {
	key := database.PresetKey(name)
	for _, p := range s.presets {
		if p.UserID == userID && p.ID != excludeID && database.PresetKey(p.Name) == key {
			return true
		}
	}
	return false
}

func (s *Store) countPresets(userID string) int {
	n := 0
	for _, p := range s.presets {
		if p.UserID == userID {
			n++
		}
	}
	return n
}

func (s *Store) CreatePreset(ctx context.Context, preset *database.Preset) error {
	if s.CreatePresetError != nil {
		return s.CreatePresetError
	}
	name, err := database.CleanPresetName(preset.Name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.countPresets(preset.UserID) >= constants.MaxPresetsPerUser {
		return database.ErrLimitReached
	}
	if s.nameTaken(preset.UserID, "", name) {
		return database.ErrConflict
	}

	now := s.now()
	preset.ID = uuid.NewString()
	preset.Name = name
	preset.CreatedAt = now
	preset.UpdatedAt = now
	cp := *preset
	s.presets[preset.ID] = &cp
	return nil
}

func (s *Store) UpdatePreset(ctx context.Context, preset *database.Preset) error {
	name, err := database.CleanPresetName(preset.Name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.presets[preset.ID]
	if !ok || existing.UserID != preset.UserID {
		return database.ErrNotFound
	}
	if s.nameTaken(preset.UserID, preset.ID, name) {
		return database.ErrConflict
	}

	existing.Name = name
	existing.Settings = preset.Settings
	existing.UpdatedAt = s.now()
	*preset = *existing
	return nil
}

func (s *Store) DeletePreset(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.presets[id]
	if !ok || p.UserID != userID {
		return database.ErrNotFound
	}
	delete(s.presets, id)
	return nil
}

// --- sessions ---

func (s *Store) Save(ctx context.Context, session database.StoredSession) error {
	if s.SaveSessionError != nil {
		return s.SaveSessionError
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*database.StoredSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok || !s.now().Before(sess.ExpiresAt) {
		return nil, nil
	}
	return &sess, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *Store) DeleteExpired(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	var n int64
	for id, sess := range s.sessions {
		if !now.Before(sess.ExpiresAt) {
			delete(s.sessions, id)
			n++
		}
	}
	return n, nil
}

var (
	_ database.UserWriter        = (*Store)(nil)
	_ database.PresetWriter      = (*Store)(nil)
	_ database.SessionRepository = (*Store)(nil)
)
