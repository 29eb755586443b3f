package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dtroode/taskflow-server/internal/model"
)

var _ model.HistoryStore = (*HistoryRepository)(nil)

type HistoryRepository struct {
	db *Connection
}

func NewHistoryRepository(db *Connection) *HistoryRepository {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) Append(ctx context.Context, entry model.HistoryEntry) error {
	const query = `
        INSERT INTO task_history (id, user_id, task_id, action, before, after, ts)
        VALUES ($1, $2, $3, $4, $5::jsonb, $6::jsonb, $7)
    `

	if _, err := r.db.Exec(ctx, query,
		entry.ID,
		entry.UserID,
		entry.TaskID,
		string(entry.Action),
		jsonOrNil(entry.Before),
		jsonOrNil(entry.After),
		entry.Timestamp,
	); err != nil {
		return fmt.Errorf("failed to append history entry: %w", err)
	}
	return nil
}

func (r *HistoryRepository) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]model.HistoryEntry, error) {
	const query = `
        SELECT id, user_id, task_id, action, before, after, ts
        FROM task_history
        WHERE user_id = $1
        ORDER BY ts DESC
        LIMIT $2
    `

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	entries := []model.HistoryEntry{}
	for rows.Next() {
		var (
			e             model.HistoryEntry
			action        string
			before, after []byte
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.TaskID, &action, &before, &after, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		e.Action = model.HistoryAction(action)
		e.Before = before
		e.After = after
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}

	return entries, nil
}

func (r *HistoryRepository) Clear(ctx context.Context, userID uuid.UUID) (int64, error) {
	cmd, err := r.db.Exec(ctx, `DELETE FROM task_history WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}
	return cmd.RowsAffected(), nil
}

// jsonOrNil turns an empty snapshot into SQL NULL.
func jsonOrNil(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
