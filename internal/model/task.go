package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultListName is used when a task names no list.
	DefaultListName = "Personal Actions"
	// MaxTaskTextLength caps task text, in runes.
	MaxTaskTextLength = 2000
)

// TaskStore defines persistence operations for tasks. Every write is scoped by
// owner in the same statement as the mutation.
type TaskStore interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Task, error)
	Upsert(ctx context.Context, task Task) (WriteResult, error)
	Update(ctx context.Context, userID uuid.UUID, id string, patch TaskPatch) (WriteResult, error)
	Delete(ctx context.Context, userID uuid.UUID, id string) (WriteResult, error)
}

// Category is the closed set of task buckets.
type Category string

const (
	CategoryPeople   Category = "people"
	CategoryProjects Category = "projects"
	CategoryActions  Category = "actions"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryPeople, CategoryProjects, CategoryActions:
		return true
	}
	return false
}

// Priority is the task priority level.
type Priority string

const (
	PriorityNone   Priority = "none"
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityNone, PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is a single to-do item owned by one user.
type Task struct {
	ID           string
	UserID       uuid.UUID
	Text         string
	Category     Category
	ListName     string
	Tags         []string
	DueDate      *time.Time
	Priority     Priority
	Notes        string
	Completed    bool
	CompletedAt  *time.Time
	IsArchived   bool
	CreatedAt    time.Time
	LastModified time.Time
}

// HasTag reports whether the task carries tag.
func (t Task) HasTag(tag string) bool {
	for _, v := range t.Tags {
		if v == tag {
			return true
		}
	}
	return false
}

// TaskPatch lists the task fields to change. Nil pointers are left untouched;
// nullable columns use an explicit Set flag so they can be cleared.
type TaskPatch struct {
	Text           *string
	Category       *Category
	ListName       *string
	Tags           *[]string
	DueDateSet     bool
	DueDate        *time.Time
	Priority       *Priority
	Notes          *string
	Completed      *bool
	CompletedAtSet bool
	CompletedAt    *time.Time
	IsArchived     *bool
	LastModified   time.Time
}

// TaskList splits a user's tasks into open and archived ones.
type TaskList struct {
	Open     []Task
	Archived []Task
}

// TaskInput is a task write as received from a client, after field aliases
// have been resolved. Absent fields are nil. Dates and timestamps are still
// unparsed; a Set flag with a nil value means an explicit null.
type TaskInput struct {
	ID             string
	Text           *string
	Category       *string
	ListName       *string
	Tags           *[]string
	DueDateSet     bool
	DueDate        *string
	Priority       *string
	Notes          *string
	Completed      *bool
	CompletedAtSet bool
	CompletedAt    *string
	IsArchived     *bool
	CreatedAt      *string
	LastModified   *string
}

// TaskDocument is the canonical external JSON shape of a task.
type TaskDocument struct {
	ID           string     `json:"id"`
	Text         string     `json:"text"`
	Category     Category   `json:"category"`
	ListName     string     `json:"listName"`
	Tags         []string   `json:"tags"`
	DueDate      *string    `json:"dueDate"`
	Priority     Priority   `json:"priority"`
	Notes        string     `json:"notes"`
	Completed    bool       `json:"completed"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastModified time.Time  `json:"lastModified"`
	CompletedAt  *time.Time `json:"completedAt"`
	IsArchived   bool       `json:"isArchived"`
}

// Document converts t to its external shape.
func (t Task) Document() TaskDocument {
	doc := TaskDocument{
		ID:           t.ID,
		Text:         t.Text,
		Category:     t.Category,
		ListName:     t.ListName,
		Tags:         t.Tags,
		Priority:     t.Priority,
		Notes:        t.Notes,
		Completed:    t.Completed,
		CreatedAt:    t.CreatedAt,
		LastModified: t.LastModified,
		CompletedAt:  t.CompletedAt,
		IsArchived:   t.IsArchived,
	}
	if doc.Tags == nil {
		doc.Tags = []string{}
	}
	if t.DueDate != nil {
		due := t.DueDate.Format("2006-01-02")
		doc.DueDate = &due
	}
	return doc
}
