package model

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	// HistoryListLimit bounds how many entries a listing returns.
	HistoryListLimit = 200
	// MaxHistoryIDLength bounds identifier fields of a history entry.
	MaxHistoryIDLength = 64
)

// HistoryStore defines persistence for the append-only task history log.
type HistoryStore interface {
	Append(ctx context.Context, entry HistoryEntry) error
	ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]HistoryEntry, error)
	Clear(ctx context.Context, userID uuid.UUID) (int64, error)
}

// HistoryAction is the fixed vocabulary of logged task mutations.
type HistoryAction string

const (
	HistoryActionCreate   HistoryAction = "create"
	HistoryActionEditText HistoryAction = "edit_text"
	HistoryActionMoveList HistoryAction = "move_list"
	HistoryActionComplete HistoryAction = "complete"
	HistoryActionDelete   HistoryAction = "delete"
)

// Valid reports whether a is part of the vocabulary.
func (a HistoryAction) Valid() bool {
	switch a {
	case HistoryActionCreate, HistoryActionEditText, HistoryActionMoveList, HistoryActionComplete, HistoryActionDelete:
		return true
	}
	return false
}

// HistoryEntry records one task mutation. Before and After are opaque
// snapshots supplied by the client.
type HistoryEntry struct {
	ID        string
	UserID    uuid.UUID
	TaskID    string
	Action    HistoryAction
	Before    json.RawMessage
	After     json.RawMessage
	Timestamp time.Time
}

// HistoryInput is a history entry as received from a client.
type HistoryInput struct {
	ID        string
	TaskID    string
	Action    string
	Before    json.RawMessage
	After     json.RawMessage
	Timestamp string
}
