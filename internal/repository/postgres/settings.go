package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dtroode/taskflow-server/internal/model"
)

var _ model.SettingsStore = (*SettingsRepository)(nil)

type SettingsRepository struct {
	db *Connection
}

func NewSettingsRepository(db *Connection) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the stored bag, or model.ErrNotFound for a user that never saved.
func (r *SettingsRepository) Get(ctx context.Context, userID uuid.UUID) (model.Settings, error) {
	var raw []byte
	err := r.db.QueryRow(ctx, `SELECT settings FROM settings WHERE user_id = $1`, userID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Settings{}, model.ErrNotFound
		}
		return model.Settings{}, fmt.Errorf("failed to get settings: %w", err)
	}

	var s model.Settings
	if err := json.Unmarshal(raw, &s); err != nil {
		return model.Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}
	return s, nil
}

func (r *SettingsRepository) Save(ctx context.Context, userID uuid.UUID, settings model.Settings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	const query = `
        INSERT INTO settings (user_id, settings, updated_at)
        VALUES ($1, $2::jsonb, NOW())
        ON CONFLICT (user_id) DO UPDATE SET
            settings = EXCLUDED.settings,
            updated_at = EXCLUDED.updated_at
    `
	if _, err := r.db.Exec(ctx, query, userID, string(raw)); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
