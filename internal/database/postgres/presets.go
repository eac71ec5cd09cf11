package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kozaktomas/photo-sheet/internal/constants"
	"github.com/kozaktomas/photo-sheet/internal/database"
)

// PresetRepository provides PostgreSQL-backed preset storage
type PresetRepository struct {
	pool *Pool
}

// NewPresetRepository creates a new PostgreSQL preset repository
func NewPresetRepository(pool *Pool) *PresetRepository {
	return &PresetRepository{pool: pool}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPreset(row rowScanner) (*database.Preset, error) {
	var p database.Preset
	var settings []byte
	if err := row.Scan(&p.ID, &p.UserID, &p.Name, &settings, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(settings, &p.Settings); err != nil {
		return nil, fmt.Errorf("decode preset settings: %w", err)
	}
	return &p, nil
}

// ListPresets returns the user's presets ordered by name
func (r *PresetRepository) ListPresets(ctx context.Context, userID string) ([]database.Preset, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, name, settings, created_at, updated_at
		FROM presets
		WHERE user_id = $1
		ORDER BY name_key
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}
	defer rows.Close()

	var presets []database.Preset
	for rows.Next() {
		p, err := scanPreset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan preset: %w", err)
		}
		presets = append(presets, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate presets: %w", err)
	}
	return presets, nil
}

// GetPreset returns one of the user's presets
func (r *PresetRepository) GetPreset(ctx context.Context, userID, id string) (*database.Preset, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, database.ErrNotFound
	}
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, name, settings, created_at, updated_at
		FROM presets
		WHERE id = $1 AND user_id = $2
	`, id, userID)
	p, err := scanPreset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get preset: %w", err)
	}
	return p, nil
}

// CreatePreset stores a new preset. The owner row is locked while counting so
// concurrent creates cannot exceed the per-user limit.
func (r *PresetRepository) CreatePreset(ctx context.Context, preset *database.Preset) error {
	name, err := database.CleanPresetName(preset.Name)
	if err != nil {
		return err
	}
	if _, err := uuid.Parse(preset.UserID); err != nil {
		return database.ErrNotFound
	}
	settings, err := json.Marshal(preset.Settings)
	if err != nil {
		return fmt.Errorf("encode preset settings: %w", err)
	}

	tx, err := r.pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var owner string
	err = tx.QueryRowContext(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, preset.UserID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return database.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lock preset owner: %w", err)
	}

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM presets WHERE user_id = $1`, preset.UserID).Scan(&count); err != nil {
		return fmt.Errorf("count presets: %w", err)
	}
	if count >= constants.MaxPresetsPerUser {
		return database.ErrLimitReached
	}

	now := time.Now()
	id := uuid.NewString()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO presets (id, user_id, name, name_key, settings, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
	`, id, preset.UserID, name, database.PresetKey(name), settings, now)
	if isUniqueViolation(err) {
		return database.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert preset: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit preset: %w", err)
	}

	preset.ID = id
	preset.Name = name
	preset.CreatedAt = now
	preset.UpdatedAt = now
	return nil
}

// UpdatePreset renames a preset or replaces its settings
func (r *PresetRepository) UpdatePreset(ctx context.Context, preset *database.Preset) error {
	name, err := database.CleanPresetName(preset.Name)
	if err != nil {
		return err
	}
	if _, err := uuid.Parse(preset.ID); err != nil {
		return database.ErrNotFound
	}
	settings, err := json.Marshal(preset.Settings)
	if err != nil {
		return fmt.Errorf("encode preset settings: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE presets SET name = $3, name_key = $4, settings = $5, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, name, settings, created_at, updated_at
	`, preset.ID, preset.UserID, name, database.PresetKey(name), settings)
	updated, err := scanPreset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return database.ErrNotFound
	}
	if isUniqueViolation(err) {
		return database.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("update preset: %w", err)
	}
	*preset = *updated
	return nil
}

// DeletePreset removes one of the user's presets
func (r *PresetRepository) DeletePreset(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return database.ErrNotFound
	}
	result, err := r.pool.Exec(ctx, `DELETE FROM presets WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete preset: %w", err)
	}
	return requireRow(result)
}

var _ database.PresetWriter = (*PresetRepository)(nil)
