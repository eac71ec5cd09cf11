package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kozaktomas/photo-sheet/internal/database"
)

// UserRepository provides PostgreSQL-backed account storage
type UserRepository struct {
	pool *Pool
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(pool *Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, COALESCE(email, ''), name, password_hash, COALESCE(google_id, ''), verified, guest, created_at`

func scanUser(row *sql.Row) (*database.User, error) {
	var u database.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.GoogleID, &u.Verified, &u.Guest, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

// GetUser retrieves a user by ID
func (r *UserRepository) GetUser(ctx context.Context, id string) (*database.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, database.ErrNotFound
	}
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetUserByEmail retrieves a user by e-mail
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*database.User, error) {
	if email == "" {
		return nil, database.ErrNotFound
	}
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// GetUserByGoogleID retrieves a user by Google subject ID
func (r *UserRepository) GetUserByGoogleID(ctx context.Context, googleID string) (*database.User, error) {
	if googleID == "" {
		return nil, database.ErrNotFound
	}
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE google_id = $1`, googleID))
}

// CreateUser stores a new user
func (r *UserRepository) CreateUser(ctx context.Context, user *database.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO users (id, email, name, password_hash, google_id, verified, guest, created_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, NULLIF($5, ''), $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		user.ID, user.Email, user.Name, user.PasswordHash, user.GoogleID, user.Verified, user.Guest, user.CreatedAt)
	if isUniqueViolation(err) {
		return database.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// UpdateUser overwrites the mutable fields of a user
func (r *UserRepository) UpdateUser(ctx context.Context, user *database.User) error {
	query := `
		UPDATE users SET
			email = NULLIF($2, ''),
			name = $3,
			password_hash = $4,
			google_id = NULLIF($5, ''),
			verified = $6,
			guest = $7
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		user.ID, user.Email, user.Name, user.PasswordHash, user.GoogleID, user.Verified, user.Guest)
	if isUniqueViolation(err) {
		return database.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return requireRow(result)
}

// requireRow maps an UPDATE or DELETE that touched nothing to ErrNotFound.
func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if n == 0 {
		return database.ErrNotFound
	}
	return nil
}

var _ database.UserWriter = (*UserRepository)(nil)
