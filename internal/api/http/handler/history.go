package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	apiErrors "github.com/dtroode/taskflow-server/internal/api/errors"
	"github.com/dtroode/taskflow-server/internal/api/http/response"
	"github.com/dtroode/taskflow-server/internal/logger"
	"github.com/dtroode/taskflow-server/internal/model"
)

// HistoryService defines the per-user history log.
type HistoryService interface {
	Append(ctx context.Context, userID uuid.UUID, in model.HistoryInput) error
	ListRecent(ctx context.Context, userID uuid.UUID) ([]model.HistoryEntry, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

// History handles /api/history.
type History struct {
	historyService HistoryService
	contextManager model.ContextManager
	logger         *logger.Logger
}

func NewHistory(historyService HistoryService, contextManager model.ContextManager, logger *logger.Logger) *History {
	return &History{
		historyService: historyService,
		contextManager: contextManager,
		logger:         logger,
	}
}

type historyEntryRequest struct {
	ID     flexString      `json:"id"`
	TaskID flexString      `json:"task_id"`
	Action flexString      `json:"action"`
	Before json.RawMessage `json:"before"`
	After  json.RawMessage `json:"after"`
	TS     json.RawMessage `json:"ts"`
}

type historyEntryResponse struct {
	ID     string          `json:"id"`
	TaskID string          `json:"task_id"`
	Action string          `json:"action"`
	Before json.RawMessage `json:"before"`
	After  json.RawMessage `json:"after"`
	TS     time.Time       `json:"ts"`
}

// List returns the newest entries first.
func (h *History) List(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUserID(h.contextManager, r)
	if err != nil {
		response.HandleError(w, r, err, h.logger)
		return
	}

	entries, err := h.historyService.ListRecent(r.Context(), userID)
	if err != nil {
		response.HandleError(w, r, err, h.logger)
		return
	}

	out := make([]historyEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, historyEntryResponse{
			ID:     e.ID,
			TaskID: e.TaskID,
			Action: string(e.Action),
			Before: e.Before,
			After:  e.After,
			TS:     e.Timestamp,
		})
	}

	response.JSON(w, http.StatusOK, map[string]any{"history": out})
}

// Append logs one entry. The body is {"entry": {...}} or a bare entry.
func (h *History) Append(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUserID(h.contextManager, r)
	if err != nil {
		response.HandleError(w, r, err, h.logger)
		return
	}

	var body map[string]json.RawMessage
	if err := decodeJSON(r, &body); err != nil {
		response.HandleError(w, r, err, h.logger)
		return
	}
	raw, err := json.Marshal(body)
	if err != nil {
		response.HandleError(w, r, err, h.logger)
		return
	}
	if entry, ok := body["entry"]; ok {
		raw = bytes.TrimSpace(entry)
	}
	if len(raw) == 0 || raw[0] != '{' {
		response.HandleError(w, r, apiErrors.NewErrValidation("Invalid history entry"), h.logger)
		return
	}

	var req historyEntryRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		response.HandleError(w, r, apiErrors.NewErrValidation("Invalid history entry"), h.logger)
		return
	}
	ts, err := timestampString(req.TS)
	if err != nil {
		response.HandleError(w, r, apiErrors.NewErrValidation("Invalid ts"), h.logger)
		return
	}

	in := model.HistoryInput{
		ID:     string(req.ID),
		TaskID: string(req.TaskID),
		Action: string(req.Action),
		Before: req.Before,
		After:  req.After,
	}
	if ts != nil {
		in.Timestamp = *ts
	}

	if err := h.historyService.Append(r.Context(), userID, in); err != nil {
		response.HandleError(w, r, err, h.logger)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{"ok": true})
}

// Clear deletes the caller's whole history.
func (h *History) Clear(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUserID(h.contextManager, r)
	if err != nil {
		response.HandleError(w, r, err, h.logger)
		return
	}

	if err := h.historyService.Clear(r.Context(), userID); err != nil {
		response.HandleError(w, r, err, h.logger)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{"ok": true})
}
