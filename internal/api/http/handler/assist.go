package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dtroode/taskflow-server/internal/api/http/response"
	"github.com/dtroode/taskflow-server/internal/logger"
	"github.com/dtroode/taskflow-server/internal/model"
)

// AssistService defines the AI-backed operations.
type AssistService interface {
	Categorize(ctx context.Context, params model.CategorizeParams) (model.Categorization, error)
	Briefing(ctx context.Context, params model.BriefingParams) (model.Briefing, error)
}

// Assist handles /api/categorize and /api/briefing.
type Assist struct {
	assistService  AssistService
	contextManager model.ContextManager
	logger         *logger.Logger
}

func NewAssist(assistService AssistService, contextManager model.ContextManager, logger *logger.Logger) *Assist {
	return &Assist{
		assistService:  assistService,
		contextManager: contextManager,
		logger:         logger,
	}
}

type categorizeRequest struct {
	Text          string `json:"text"`
	TaskText      string `json:"taskText"`
	ExistingLists struct {
		People   []string `json:"people"`
		Projects []string `json:"projects"`
		Actions  []string `json:"actions"`
	} `json:"existingLists"`
	Context string `json:"context"`
	APIKey  string `json:"apiKey"`
}

type categorizeResponse struct {
	Category string   `json:"category"`
	ListName string   `json:"listName"`
	Text     string   `json:"text"`
	Tags     []string `json:"tags"`
	DueDate  *string  `json:"dueDate"`
}

// Categorize classifies free-form text. It runs with or without a session.
func (h *Assist) Categorize(w http.ResponseWriter, r *http.Request) {
	var req categorizeRequest
	if err := decodeJSON(r, &req); err != nil {
		response.HandleError(w, r, err, h.logger)
		return
	}

	text := req.Text
	if strings.TrimSpace(text) == "" {
		text = req.TaskText
	}
	userID, _ := h.contextManager.GetUserIDFromContext(r.Context())

	result, err := h.assistService.Categorize(r.Context(), model.CategorizeParams{
		UserID: userID,
		Text:   text,
		ExistingLists: model.ExistingLists{
			People:   req.ExistingLists.People,
			Projects: req.ExistingLists.Projects,
			Actions:  req.ExistingLists.Actions,
		},
		Context: req.Context,
		APIKey:  req.APIKey,
	})
	if err != nil {
		response.HandleError(w, r, err, h.logger)
		return
	}

	tags := result.Tags
	if tags == nil {
		tags = []string{}
	}
	response.JSON(w, http.StatusOK, categorizeResponse{
		Category: string(result.Category),
		ListName: result.ListName,
		Text:     result.Text,
		Tags:     tags,
		DueDate:  result.DueDate,
	})
}

type briefingRequest struct {
	Mode    string `json:"mode"`
	Filters struct {
		ListName string `json:"list_name"`
		Category string `json:"category"`
	} `json:"filters"`
	CustomContext string `json:"custom_context"`
}

type prioritizedTaskResponse struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Score   int    `json:"score"`
	Urgency string `json:"urgency"`
	Reason  string `json:"reason"`
}

type briefingResponse struct {
	Mode             string                    `json:"mode"`
	TaskCount        int                       `json:"task_count"`
	Briefing         string                    `json:"briefing"`
	PrioritizedTasks []prioritizedTaskResponse `json:"prioritized_tasks"`
	GeneratedAt      time.Time                 `json:"generated_at"`
	Model            string                    `json:"model"`
}

// Briefing summarizes and/or ranks the caller's open tasks.
func (h *Assist) Briefing(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUserID(h.contextManager, r)
	if err != nil {
		response.HandleError(w, r, err, h.logger)
		return
	}

	var req briefingRequest
	if err := decodeJSON(r, &req); err != nil {
		response.HandleError(w, r, err, h.logger)
		return
	}

	result, err := h.assistService.Briefing(r.Context(), model.BriefingParams{
		UserID:        userID,
		Mode:          model.BriefingMode(strings.ToLower(strings.TrimSpace(req.Mode))),
		ListName:      req.Filters.ListName,
		Category:      req.Filters.Category,
		CustomContext: req.CustomContext,
	})
	if err != nil {
		response.HandleError(w, r, err, h.logger)
		return
	}

	ranked := make([]prioritizedTaskResponse, 0, len(result.Prioritized))
	for _, p := range result.Prioritized {
		ranked = append(ranked, prioritizedTaskResponse{
			ID:      p.ID,
			Text:    p.Text,
			Score:   p.Score,
			Urgency: string(p.Urgency),
			Reason:  p.Reason,
		})
	}

	response.JSON(w, http.StatusOK, briefingResponse{
		Mode:             string(result.Mode),
		TaskCount:        result.TaskCount,
		Briefing:         result.Narrative,
		PrioritizedTasks: ranked,
		GeneratedAt:      result.GeneratedAt,
		Model:            result.Model,
	})
}
