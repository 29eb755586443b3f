package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/dtroode/taskflow-server/internal/model"
)

func TestNewTaskRepository(t *testing.T) {
	db := &Connection{}
	repo := NewTaskRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

func TestBuildTaskUpdate(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	text := "call mom"
	completed := true
	category := model.CategoryPeople

	tests := []struct {
		name      string
		patch     model.TaskPatch
		wantQuery string
		wantArgs  []any
	}{
		{
			name:      "only last modified",
			patch:     model.TaskPatch{LastModified: now},
			wantQuery: "UPDATE tasks SET last_modified = $1 WHERE id = $2 AND user_id = $3",
			wantArgs:  []any{now, "t1", userID},
		},
		{
			name: "text category and completion",
			patch: model.TaskPatch{
				Text:           &text,
				Category:       &category,
				Completed:      &completed,
				CompletedAtSet: true,
				CompletedAt:    &now,
				LastModified:   now,
			},
			wantQuery: "UPDATE tasks SET text = $1, category = $2, completed = $3, completed_at = $4, last_modified = $5 WHERE id = $6 AND user_id = $7",
			wantArgs:  []any{text, "people", completed, &now, now, "t1", userID},
		},
		{
			name:      "clear due date",
			patch:     model.TaskPatch{DueDateSet: true, LastModified: now},
			wantQuery: "UPDATE tasks SET due_date = $1, last_modified = $2 WHERE id = $3 AND user_id = $4",
			wantArgs:  []any{(*time.Time)(nil), now, "t1", userID},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			query, args := buildTaskUpdate(userID, "t1", tt.patch)
			assert.Equal(t, tt.wantQuery, query)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestBuildTaskUpdate_NilTagsBecomeEmpty(t *testing.T) {
	var tags []string
	_, args := buildTaskUpdate(uuid.New(), "t1", model.TaskPatch{Tags: &tags})

	assert.Equal(t, []string{}, args[0])
}
