package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dtroode/taskflow-server/internal/model"
)

var _ model.TaskStore = (*TaskRepository)(nil)

const taskColumns = `id, user_id, text, category, list_name, tags, due_date, priority, notes,
	completed, completed_at, is_archived, created_at, last_modified`

type TaskRepository struct {
	db *Connection
}

func NewTaskRepository(db *Connection) *TaskRepository {
	return &TaskRepository{
		db: db,
	}
}

func (r *TaskRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1 ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}

	return tasks, nil
}

// Upsert inserts the task or overwrites an existing row with the same id.
// A row owned by another user is left untouched and reported as no match.
func (r *TaskRepository) Upsert(ctx context.Context, task model.Task) (model.WriteResult, error) {
	query := `INSERT INTO tasks (` + taskColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			  ON CONFLICT (id) DO UPDATE SET
				text = EXCLUDED.text,
				category = EXCLUDED.category,
				list_name = EXCLUDED.list_name,
				tags = EXCLUDED.tags,
				due_date = EXCLUDED.due_date,
				priority = EXCLUDED.priority,
				notes = EXCLUDED.notes,
				completed = EXCLUDED.completed,
				completed_at = EXCLUDED.completed_at,
				is_archived = EXCLUDED.is_archived,
				created_at = EXCLUDED.created_at,
				last_modified = EXCLUDED.last_modified
			  WHERE tasks.user_id = EXCLUDED.user_id`

	tags := task.Tags
	if tags == nil {
		tags = []string{}
	}

	cmd, err := r.db.Exec(ctx, query,
		task.ID, task.UserID, task.Text, string(task.Category), task.ListName, tags,
		task.DueDate, string(task.Priority), task.Notes, task.Completed, task.CompletedAt,
		task.IsArchived, task.CreatedAt, task.LastModified,
	)
	if err != nil {
		return model.WriteNoMatchingRow, fmt.Errorf("failed to upsert task: %w", err)
	}

	return model.WriteResultFromRows(cmd.RowsAffected()), nil
}

func (r *TaskRepository) Update(ctx context.Context, userID uuid.UUID, id string, patch model.TaskPatch) (model.WriteResult, error) {
	query, args := buildTaskUpdate(userID, id, patch)

	cmd, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return model.WriteNoMatchingRow, fmt.Errorf("failed to update task: %w", err)
	}

	return model.WriteResultFromRows(cmd.RowsAffected()), nil
}

func (r *TaskRepository) Delete(ctx context.Context, userID uuid.UUID, id string) (model.WriteResult, error) {
	cmd, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return model.WriteNoMatchingRow, fmt.Errorf("failed to delete task: %w", err)
	}

	return model.WriteResultFromRows(cmd.RowsAffected()), nil
}

// buildTaskUpdate renders a single owner-scoped UPDATE touching only the
// patched columns. last_modified is always written.
func buildTaskUpdate(userID uuid.UUID, id string, patch model.TaskPatch) (string, []any) {
	var sets []string
	var args []any
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Text != nil {
		set("text", *patch.Text)
	}
	if patch.Category != nil {
		set("category", string(*patch.Category))
	}
	if patch.ListName != nil {
		set("list_name", *patch.ListName)
	}
	if patch.Tags != nil {
		tags := *patch.Tags
		if tags == nil {
			tags = []string{}
		}
		set("tags", tags)
	}
	if patch.DueDateSet {
		set("due_date", patch.DueDate)
	}
	if patch.Priority != nil {
		set("priority", string(*patch.Priority))
	}
	if patch.Notes != nil {
		set("notes", *patch.Notes)
	}
	if patch.Completed != nil {
		set("completed", *patch.Completed)
	}
	if patch.CompletedAtSet {
		set("completed_at", patch.CompletedAt)
	}
	if patch.IsArchived != nil {
		set("is_archived", *patch.IsArchived)
	}
	set("last_modified", patch.LastModified)

	args = append(args, id, userID)
	query := fmt.Sprintf("UPDATE tasks SET %s WHERE id = $%d AND user_id = $%d",
		strings.Join(sets, ", "), len(args)-1, len(args))

	return query, args
}

func scanTask(row pgx.Row) (model.Task, error) {
	var (
		task     model.Task
		category string
		priority string
	)
	err := row.Scan(
		&task.ID, &task.UserID, &task.Text, &category, &task.ListName, &task.Tags,
		&task.DueDate, &priority, &task.Notes, &task.Completed, &task.CompletedAt,
		&task.IsArchived, &task.CreatedAt, &task.LastModified,
	)
	task.Category = model.Category(category)
	task.Priority = model.Priority(priority)
	return task, err
}
