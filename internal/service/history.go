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

// History maintains the per-user log of task mutations.
type History struct {
	store  model.HistoryStore
	now    func() time.Time
	logger *logger.Logger
}

func NewHistory(store model.HistoryStore, logger *logger.Logger) *History {
	return &History{
		store:  store,
		now:    time.Now,
		logger: logger,
	}
}

// Append validates and inserts one entry.
func (s *History) Append(ctx context.Context, userID uuid.UUID, in model.HistoryInput) error {
	taskID := truncateRunes(strings.TrimSpace(in.TaskID), model.MaxHistoryIDLength)
	action := model.HistoryAction(strings.TrimSpace(in.Action))
	if taskID == "" || action == "" {
		return apiErrors.NewErrValidation("Invalid history entry")
	}
	if !action.Valid() {
		return apiErrors.NewErrValidation("Invalid action type")
	}

	id := truncateRunes(strings.TrimSpace(in.ID), model.MaxHistoryIDLength)
	if id == "" {
		id = uuid.NewString()
	}

	ts := s.now()
	if in.Timestamp != "" {
		parsed, err := parseTimestamp("ts", in.Timestamp)
		if err != nil {
			return err
		}
		ts = parsed
	}

	entry := model.HistoryEntry{
		ID:        id,
		UserID:    userID,
		TaskID:    taskID,
		Action:    action,
		Before:    nullSnapshot(in.Before),
		After:     nullSnapshot(in.After),
		Timestamp: ts,
	}
	if err := s.store.Append(ctx, entry); err != nil {
		s.logger.Error("History service: failed to append entry",
			"user_id", userID,
			"task_id", taskID,
			"error", err.Error())
		return fmt.Errorf("failed to append history entry: %w", err)
	}

	return nil
}

// ListRecent returns the newest entries first, bounded by model.HistoryListLimit.
func (s *History) ListRecent(ctx context.Context, userID uuid.UUID) ([]model.HistoryEntry, error) {
	entries, err := s.store.ListRecent(ctx, userID, model.HistoryListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	if entries == nil {
		entries = []model.HistoryEntry{}
	}
	return entries, nil
}

// Clear irreversibly deletes all of the user's entries.
func (s *History) Clear(ctx context.Context, userID uuid.UUID) error {
	removed, err := s.store.Clear(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}

	s.logger.Info("History service: history cleared",
		"user_id", userID,
		"removed", removed)
	return nil
}

// nullSnapshot maps empty, null or false-y snapshots to nil.
func nullSnapshot(raw []byte) []byte {
	switch strings.TrimSpace(string(raw)) {
	case "", "null", "false", `""`, "0":
		return nil
	}
	return raw
}
