package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dtroode/taskflow-server/internal/api/http/response"
	"github.com/dtroode/taskflow-server/internal/logger"
	"github.com/dtroode/taskflow-server/internal/model"
)

// ExportService writes and reads task exports in object storage.
type ExportService interface {
	Create(ctx context.Context, userID uuid.UUID) (string, error)
	Open(ctx context.Context, userID uuid.UUID, name string) (io.ReadCloser, error)
}

// Export handles /api/export.
type Export struct {
	exportService  ExportService
	contextManager model.ContextManager
	logger         *logger.Logger
}

func NewExport(exportService ExportService, contextManager model.ContextManager, logger *logger.Logger) *Export {
	return &Export{
		exportService:  exportService,
		contextManager: contextManager,
		logger:         logger,
	}
}

func (h *Export) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUserID(h.contextManager, r)
	if err != nil {
		response.HandleError(w, r, err, h.logger)
		return
	}

	key, err := h.exportService.Create(r.Context(), userID)
	if err != nil {
		response.HandleError(w, r, err, h.logger)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{"ok": true, "key": key})
}

// Download streams a previous export of the caller.
func (h *Export) Download(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUserID(h.contextManager, r)
	if err != nil {
		response.HandleError(w, r, err, h.logger)
		return
	}

	rc, err := h.exportService.Open(r.Context(), userID, chi.URLParam(r, "name"))
	if err != nil {
		response.HandleError(w, r, err, h.logger)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Error("Export handler: failed to stream export",
			"user_id", userID,
			"error", err.Error())
	}
}
