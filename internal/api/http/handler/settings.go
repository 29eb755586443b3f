package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	apiErrors "github.com/dtroode/taskflow-server/internal/api/errors"
	"github.com/dtroode/taskflow-server/internal/api/http/response"
	"github.com/dtroode/taskflow-server/internal/logger"
	"github.com/dtroode/taskflow-server/internal/model"
)

// SettingsService defines the per-user settings bag.
type SettingsService interface {
	Get(ctx context.Context, userID uuid.UUID) (model.Settings, error)
	Save(ctx context.Context, userID uuid.UUID, patch model.SettingsPatch) (model.Settings, error)
}

// Settings handles /api/settings.
type Settings struct {
	settingsService SettingsService
	contextManager  model.ContextManager
	logger          *logger.Logger
}

func NewSettings(settingsService SettingsService, contextManager model.ContextManager, logger *logger.Logger) *Settings {
	return &Settings{
		settingsService: settingsService,
		contextManager:  contextManager,
		logger:          logger,
	}
}

// settingsView never carries the API key itself.
type settingsView struct {
	AIContext   string                 `json:"ai_context"`
	AINotes     string                 `json:"ai_notes"`
	AIProvider  string                 `json:"ai_provider,omitempty"`
	AIAPIKeySet bool                   `json:"ai_api_key_set"`
	Lists       []model.ListPreference `json:"lists"`
}

func newSettingsView(s model.Settings) settingsView {
	lists := s.Lists
	if lists == nil {
		lists = []model.ListPreference{}
	}
	return settingsView{
		AIContext:   s.AIContext,
		AINotes:     s.AINotes,
		AIProvider:  s.AIProvider,
		AIAPIKeySet: s.AIAPIKey != "",
		Lists:       lists,
	}
}

// Get returns the caller's settings, or empty defaults.
func (h *Settings) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUserID(h.contextManager, r)
	if err != nil {
		response.HandleError(w, r, err, h.logger)
		return
	}

	settings, err := h.settingsService.Get(r.Context(), userID)
	if err != nil {
		response.HandleError(w, r, err, h.logger)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{"settings": newSettingsView(settings)})
}

// Save merges the submitted fields over the stored settings.
func (h *Settings) Save(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUserID(h.contextManager, r)
	if err != nil {
		response.HandleError(w, r, err, h.logger)
		return
	}

	var body struct {
		Settings json.RawMessage `json:"settings"`
	}
	if err := decodeJSON(r, &body); err != nil {
		response.HandleError(w, r, err, h.logger)
		return
	}
	raw := bytes.TrimSpace(body.Settings)
	if len(raw) == 0 || raw[0] != '{' {
		response.HandleError(w, r, apiErrors.NewErrValidation("Invalid settings payload"), h.logger)
		return
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		response.HandleError(w, r, apiErrors.NewErrValidation("Invalid settings payload"), h.logger)
		return
	}

	saved, err := h.settingsService.Save(r.Context(), userID, settingsPatch(fields))
	if err != nil {
		response.HandleError(w, r, err, h.logger)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"settings": newSettingsView(saved),
	})
}

// settingsPatch coerces loosely typed fields. Only keys present in fields
// end up in the patch.
func settingsPatch(fields map[string]json.RawMessage) model.SettingsPatch {
	var p model.SettingsPatch
	str := func(key string) *string {
		raw, ok := fields[key]
		if !ok {
			return nil
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			s = ""
		}
		return &s
	}

	p.AIContext = str("ai_context")
	p.AINotes = str("ai_notes")
	p.AIAPIKey = str("ai_api_key")
	p.AIProvider = str("ai_provider")

	if raw, ok := fields["lists"]; ok {
		lists := coerceLists(raw)
		p.Lists = &lists
	}
	return p
}

func coerceLists(raw json.RawMessage) []model.ListPreference {
	var items []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return []model.ListPreference{}
	}

	lists := make([]model.ListPreference, 0, len(items))
	for _, item := range items {
		lists = append(lists, model.ListPreference{
			ID:        looseString(item["id"]),
			Name:      looseString(item["name"]),
			Pinned:    truthy(item["pinned"]),
			Collapsed: truthy(item["collapsed"]),
			Order:     orderOrDefault(item["order"]),
		})
	}
	return lists
}

// looseString renders a falsy value as "" and any other scalar as text.
func looseString(raw json.RawMessage) string {
	if !truthy(raw) {
		return ""
	}
	s, err := scalarString(raw)
	if err != nil {
		return ""
	}
	return s
}

// truthy follows JavaScript truthiness for JSON values.
func truthy(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}
	switch string(raw) {
	case "null", "false", `""`:
		return false
	}
	if f, err := strconv.ParseFloat(string(raw), 64); err == nil {
		return f != 0
	}
	return true
}

func orderOrDefault(raw json.RawMessage) float64 {
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return model.DefaultListOrder
	}
	return f
}
