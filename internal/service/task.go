package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	apiErrors "github.com/dtroode/taskflow-server/internal/api/errors"
	"github.com/dtroode/taskflow-server/internal/logger"
	"github.com/dtroode/taskflow-server/internal/model"
)

const dateLayout = "2006-01-02"

// Task implements owner-scoped task CRUD.
type Task struct {
	store  model.TaskStore
	now    func() time.Time
	logger *logger.Logger
}

func NewTask(store model.TaskStore, logger *logger.Logger) *Task {
	return &Task{
		store:  store,
		now:    time.Now,
		logger: logger,
	}
}

// List returns the user's tasks split into open and archived, oldest first.
func (s *Task) List(ctx context.Context, userID uuid.UUID) (model.TaskList, error) {
	tasks, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return model.TaskList{}, fmt.Errorf("failed to list tasks: %w", err)
	}

	list := model.TaskList{Open: []model.Task{}, Archived: []model.Task{}}
	for _, t := range tasks {
		if t.IsArchived {
			list.Archived = append(list.Archived, t)
			continue
		}
		list.Open = append(list.Open, t)
	}
	return list, nil
}

// Save creates the task or overwrites the caller's task with the same id. A
// foreign id is left untouched and still reported as saved.
func (s *Task) Save(ctx context.Context, userID uuid.UUID, in model.TaskInput) (string, error) {
	task, err := s.buildTask(userID, in)
	if err != nil {
		return "", err
	}

	result, err := s.store.Upsert(ctx, task)
	if err != nil {
		s.logger.Error("Task service: failed to save task",
			"user_id", userID,
			"task_id", task.ID,
			"error", err.Error())
		return "", fmt.Errorf("failed to save task: %w", err)
	}
	if result == model.WriteNoMatchingRow {
		s.logger.Warn("Task service: upsert skipped task owned by another user",
			"user_id", userID,
			"task_id", task.ID)
	}

	return task.ID, nil
}

func (s *Task) buildTask(userID uuid.UUID, in model.TaskInput) (model.Task, error) {
	now := s.now()

	text := ""
	if in.Text != nil {
		text = cleanText(*in.Text)
	}
	if text == "" {
		return model.Task{}, apiErrors.NewErrValidation("Task text required")
	}

	task := model.Task{
		ID:           strings.TrimSpace(in.ID),
		UserID:       userID,
		Text:         text,
		Category:     model.CategoryActions,
		ListName:     model.DefaultListName,
		Tags:         []string{},
		Priority:     model.PriorityNone,
		CreatedAt:    now,
		LastModified: now,
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	if in.Category != nil && *in.Category != "" {
		c, err := parseCategory(*in.Category)
		if err != nil {
			return model.Task{}, err
		}
		task.Category = c
	}
	if in.ListName != nil {
		task.ListName = listNameOrDefault(*in.ListName)
	}
	if in.Tags != nil {
		task.Tags = cleanTags(*in.Tags)
	}
	if in.DueDate != nil {
		due, err := parseDueDate(*in.DueDate)
		if err != nil {
			return model.Task{}, err
		}
		task.DueDate = due
	}
	if in.Priority != nil && *in.Priority != "" {
		p, err := parsePriority(*in.Priority)
		if err != nil {
			return model.Task{}, err
		}
		task.Priority = p
	}
	if in.Notes != nil {
		task.Notes = *in.Notes
	}
	if in.IsArchived != nil {
		task.IsArchived = *in.IsArchived
	}
	if in.CreatedAt != nil && *in.CreatedAt != "" {
		ts, err := parseTimestamp("createdAt", *in.CreatedAt)
		if err != nil {
			return model.Task{}, err
		}
		task.CreatedAt = ts
	}
	if in.LastModified != nil && *in.LastModified != "" {
		ts, err := parseTimestamp("lastModified", *in.LastModified)
		if err != nil {
			return model.Task{}, err
		}
		task.LastModified = ts
	}

	if in.Completed != nil {
		task.Completed = *in.Completed
	}
	if task.Completed {
		completedAt := now
		if in.CompletedAt != nil && *in.CompletedAt != "" {
			ts, err := parseTimestamp("completedAt", *in.CompletedAt)
			if err != nil {
				return model.Task{}, err
			}
			completedAt = ts
		}
		task.CompletedAt = &completedAt
	}

	return task, nil
}

// Update changes only the fields present in in. A missing or foreign task
// yields WriteNoMatchingRow without an error.
func (s *Task) Update(ctx context.Context, userID uuid.UUID, in model.TaskInput) (model.WriteResult, error) {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return model.WriteNoMatchingRow, apiErrors.NewErrValidation("Task ID required")
	}

	patch, err := s.buildPatch(in)
	if err != nil {
		return model.WriteNoMatchingRow, err
	}

	result, err := s.store.Update(ctx, userID, id, patch)
	if err != nil {
		s.logger.Error("Task service: failed to update task",
			"user_id", userID,
			"task_id", id,
			"error", err.Error())
		return model.WriteNoMatchingRow, fmt.Errorf("failed to update task: %w", err)
	}

	s.logger.Debug("Task service: task updated",
		"user_id", userID,
		"task_id", id,
		"result", result.String())

	return result, nil
}

func (s *Task) buildPatch(in model.TaskInput) (model.TaskPatch, error) {
	now := s.now()
	patch := model.TaskPatch{LastModified: now}

	if in.Text != nil {
		text := cleanText(*in.Text)
		if text == "" {
			return model.TaskPatch{}, apiErrors.NewErrValidation("Task text required")
		}
		patch.Text = &text
	}
	if in.Category != nil {
		c, err := parseCategory(*in.Category)
		if err != nil {
			return model.TaskPatch{}, err
		}
		patch.Category = &c
	}
	if in.ListName != nil {
		name := listNameOrDefault(*in.ListName)
		patch.ListName = &name
	}
	if in.Tags != nil {
		tags := cleanTags(*in.Tags)
		patch.Tags = &tags
	}
	if in.DueDateSet {
		patch.DueDateSet = true
		if in.DueDate != nil {
			due, err := parseDueDate(*in.DueDate)
			if err != nil {
				return model.TaskPatch{}, err
			}
			patch.DueDate = due
		}
	}
	if in.Priority != nil {
		p, err := parsePriority(*in.Priority)
		if err != nil {
			return model.TaskPatch{}, err
		}
		patch.Priority = &p
	}
	if in.Notes != nil {
		notes := *in.Notes
		patch.Notes = &notes
	}
	if in.IsArchived != nil {
		archived := *in.IsArchived
		patch.IsArchived = &archived
	}

	if in.CompletedAtSet {
		patch.CompletedAtSet = true
		if in.CompletedAt != nil && *in.CompletedAt != "" {
			ts, err := parseTimestamp("completedAt", *in.CompletedAt)
			if err != nil {
				return model.TaskPatch{}, err
			}
			patch.CompletedAt = &ts
		}
	}
	if in.Completed != nil {
		completed := *in.Completed
		patch.Completed = &completed
		switch {
		case !completed:
			patch.CompletedAtSet = true
			patch.CompletedAt = nil
		case patch.CompletedAt == nil:
			patch.CompletedAtSet = true
			patch.CompletedAt = &now
		}
	}

	return patch, nil
}

// Delete removes the caller's task. A missing or foreign task is not an error.
func (s *Task) Delete(ctx context.Context, userID uuid.UUID, id string) (model.WriteResult, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.WriteNoMatchingRow, apiErrors.NewErrValidation("Task ID required")
	}

	result, err := s.store.Delete(ctx, userID, id)
	if err != nil {
		s.logger.Error("Task service: failed to delete task",
			"user_id", userID,
			"task_id", id,
			"error", err.Error())
		return model.WriteNoMatchingRow, fmt.Errorf("failed to delete task: %w", err)
	}

	s.logger.Debug("Task service: task deleted",
		"user_id", userID,
		"task_id", id,
		"result", result.String())

	return result, nil
}

func cleanText(text string) string {
	return truncateRunes(strings.TrimSpace(text), model.MaxTaskTextLength)
}

func listNameOrDefault(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.DefaultListName
	}
	return name
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

func parseCategory(value string) (model.Category, error) {
	c := model.Category(strings.ToLower(strings.TrimSpace(value)))
	if !c.Valid() {
		return "", apiErrors.NewErrValidation(fmt.Sprintf("Unknown category %q", value))
	}
	return c, nil
}

func parsePriority(value string) (model.Priority, error) {
	p := model.Priority(strings.ToLower(strings.TrimSpace(value)))
	if p == "" {
		return model.PriorityNone, nil
	}
	if !p.Valid() {
		return "", apiErrors.NewErrValidation(fmt.Sprintf("Unknown priority %q", value))
	}
	return p, nil
}

// parseDueDate accepts a calendar date or an RFC 3339 timestamp and keeps only
// the date. An empty value clears the due date.
func parseDueDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	if d, err := time.Parse(dateLayout, value); err == nil {
		return &d, nil
	}
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, apiErrors.NewErrValidation(fmt.Sprintf("Invalid due date %q", value))
	}
	d := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
	return &d, nil
}

func parseTimestamp(field, value string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, apiErrors.NewErrValidation(fmt.Sprintf("Invalid %s %q", field, value))
	}
	return ts, nil
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}
