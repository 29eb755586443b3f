package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dtroode/taskflow-server/internal/api/http/response"
	"github.com/dtroode/taskflow-server/internal/logger"
	"github.com/dtroode/taskflow-server/internal/model"
)

// TaskService defines owner-scoped task operations.
type TaskService interface {
	List(ctx context.Context, userID uuid.UUID) (model.TaskList, error)
	Save(ctx context.Context, userID uuid.UUID, in model.TaskInput) (string, error)
	Update(ctx context.Context, userID uuid.UUID, in model.TaskInput) (model.WriteResult, error)
	Delete(ctx context.Context, userID uuid.UUID, id string) (model.WriteResult, error)
}

// Task handles /api/tasks.
type Task struct {
	taskService    TaskService
	contextManager model.ContextManager
	logger         *logger.Logger
}

func NewTask(taskService TaskService, contextManager model.ContextManager, logger *logger.Logger) *Task {
	return &Task{
		taskService:    taskService,
		contextManager: contextManager,
		logger:         logger,
	}
}

type taskListResponse struct {
	Tasks    []model.TaskDocument `json:"tasks"`
	Archived []model.TaskDocument `json:"archived"`
}

// List returns open and archived tasks in their external shape.
func (h *Task) List(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUserID(h.contextManager, r)
	if err != nil {
		response.HandleError(w, r, err, h.logger)
		return
	}

	list, err := h.taskService.List(r.Context(), userID)
	if err != nil {
		response.HandleError(w, r, err, h.logger)
		return
	}

	resp := taskListResponse{
		Tasks:    make([]model.TaskDocument, 0, len(list.Open)),
		Archived: make([]model.TaskDocument, 0, len(list.Archived)),
	}
	for _, t := range list.Open {
		resp.Tasks = append(resp.Tasks, t.Document())
	}
	for _, t := range list.Archived {
		resp.Archived = append(resp.Archived, t.Document())
	}

	response.JSON(w, http.StatusOK, resp)
}

// Create upserts a task by id.
func (h *Task) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUserID(h.contextManager, r)
	if err != nil {
		response.HandleError(w, r, err, h.logger)
		return
	}

	fields := taskFields{}
	if err := decodeJSON(r, &fields); err != nil {
		response.HandleError(w, r, err, h.logger)
		return
	}
	in, err := fields.taskInput()
	if err != nil {
		response.HandleError(w, r, err, h.logger)
		return
	}

	id, err := h.taskService.Save(r.Context(), userID, in)
	if err != nil {
		response.HandleError(w, r, err, h.logger)
		return
	}

	h.logger.Debug("Task handler: task saved",
		"user_id", userID,
		"task_id", id)

	response.JSON(w, http.StatusOK, map[string]any{"ok": true, "id": id})
}

// Update applies a partial update. The id comes from the path, the query
// string or the body, in that order.
func (h *Task) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUserID(h.contextManager, r)
	if err != nil {
		response.HandleError(w, r, err, h.logger)
		return
	}

	fields := taskFields{}
	if err := decodeJSON(r, &fields); err != nil {
		response.HandleError(w, r, err, h.logger)
		return
	}
	in, err := fields.taskInput()
	if err != nil {
		response.HandleError(w, r, err, h.logger)
		return
	}
	if id := taskIDFromRequest(r); id != "" {
		in.ID = id
	}

	if _, err := h.taskService.Update(r.Context(), userID, in); err != nil {
		response.HandleError(w, r, err, h.logger)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{"success": true})
}

// Delete removes a task. Missing and foreign tasks are reported as deleted.
func (h *Task) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUserID(h.contextManager, r)
	if err != nil {
		response.HandleError(w, r, err, h.logger)
		return
	}

	id := taskIDFromRequest(r)
	if id == "" {
		var body struct {
			ID flexString `json:"id"`
		}
		if err := decodeJSON(r, &body); err != nil {
			response.HandleError(w, r, err, h.logger)
			return
		}
		id = string(body.ID)
	}

	if _, err := h.taskService.Delete(r.Context(), userID, id); err != nil {
		response.HandleError(w, r, err, h.logger)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{"success": true})
}

func taskIDFromRequest(r *http.Request) string {
	if id := strings.TrimSpace(chi.URLParam(r, "id")); id != "" {
		return id
	}
	return strings.TrimSpace(r.URL.Query().Get("id"))
}
