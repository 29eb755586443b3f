package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"regexp"
	"time"

	"github.com/google/uuid"

	apiErrors "github.com/dtroode/taskflow-server/internal/api/errors"
	"github.com/dtroode/taskflow-server/internal/logger"
	"github.com/dtroode/taskflow-server/internal/model"
)

const exportTimeLayout = "20060102T150405Z"

var exportNamePattern = regexp.MustCompile(`^[0-9A-Za-z_-]+\.json$`)

// Export snapshots a user's tasks and settings into object storage.
type Export struct {
	tasks    *Task
	settings *Settings
	storage  model.Storage
	now      func() time.Time
	logger   *logger.Logger
}

func NewExport(tasks *Task, settings *Settings, storage model.Storage, logger *logger.Logger) *Export {
	return &Export{
		tasks:    tasks,
		settings: settings,
		storage:  storage,
		now:      time.Now,
		logger:   logger,
	}
}

type exportDocument struct {
	UserID     uuid.UUID            `json:"user_id"`
	ExportedAt time.Time            `json:"exported_at"`
	Tasks      []model.TaskDocument `json:"tasks"`
	Archived   []model.TaskDocument `json:"archived"`
	Settings   model.Settings       `json:"settings"`
}

// Create writes a new export and returns its object key.
func (s *Export) Create(ctx context.Context, userID uuid.UUID) (string, error) {
	list, err := s.tasks.List(ctx, userID)
	if err != nil {
		return "", err
	}
	settings, err := s.settings.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	settings.AIAPIKey = ""

	now := s.now().UTC()
	doc := exportDocument{
		UserID:     userID,
		ExportedAt: now,
		Tasks:      documents(list.Open),
		Archived:   documents(list.Archived),
		Settings:   settings,
	}
	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode export: %w", err)
	}

	key := exportKey(userID, now.Format(exportTimeLayout)+".json")
	if err := s.storage.Upload(ctx, key, bytes.NewReader(body), int64(len(body)), "application/json"); err != nil {
		s.logger.Error("Export service: failed to upload export",
			"user_id", userID,
			"key", key,
			"error", err.Error())
		return "", fmt.Errorf("failed to upload export: %w", err)
	}

	s.logger.Info("Export service: export written",
		"user_id", userID,
		"key", key,
		"bytes", len(body))

	return key, nil
}

// Open streams a previous export of userID. name is the last key segment.
func (s *Export) Open(ctx context.Context, userID uuid.UUID, name string) (io.ReadCloser, error) {
	if !exportNamePattern.MatchString(name) {
		return nil, apiErrors.NewErrValidation("Invalid export name")
	}

	key := exportKey(userID, name)
	exists, err := s.storage.Exists(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to check export: %w", err)
	}
	if !exists {
		return nil, apiErrors.NewErrNotFound("Export not found")
	}

	rc, err := s.storage.Download(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to download export: %w", err)
	}
	return rc, nil
}

func exportKey(userID uuid.UUID, name string) string {
	return path.Join("exports", userID.String(), name)
}

func documents(tasks []model.Task) []model.TaskDocument {
	out := make([]model.TaskDocument, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Document())
	}
	return out
}
