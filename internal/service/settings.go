package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dtroode/taskflow-server/internal/logger"
	"github.com/dtroode/taskflow-server/internal/model"
)

const defaultAIProvider = "openai"

// Settings reads and merges the per-user preferences bag.
type Settings struct {
	store  model.SettingsStore
	logger *logger.Logger
}

func NewSettings(store model.SettingsStore, logger *logger.Logger) *Settings {
	return &Settings{
		store:  store,
		logger: logger,
	}
}

// Get returns the stored settings, or empty defaults for a user that never saved.
func (s *Settings) Get(ctx context.Context, userID uuid.UUID) (model.Settings, error) {
	settings, err := s.store.Get(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return model.Settings{Lists: []model.ListPreference{}}, nil
	}
	if err != nil {
		return model.Settings{}, fmt.Errorf("failed to get settings: %w", err)
	}
	if settings.Lists == nil {
		settings.Lists = []model.ListPreference{}
	}
	return settings, nil
}

// Save sanitizes patch, merges it over the stored bag and persists the result.
func (s *Settings) Save(ctx context.Context, userID uuid.UUID, patch model.SettingsPatch) (model.Settings, error) {
	current, err := s.Get(ctx, userID)
	if err != nil {
		return model.Settings{}, err
	}

	merged := current.Merge(sanitizeSettings(patch))
	if err := s.store.Save(ctx, userID, merged); err != nil {
		s.logger.Error("Settings service: failed to save settings",
			"user_id", userID,
			"error", err.Error())
		return model.Settings{}, fmt.Errorf("failed to save settings: %w", err)
	}

	s.logger.Debug("Settings service: settings saved",
		"user_id", userID,
		"lists", len(merged.Lists))

	return merged, nil
}

func sanitizeSettings(p model.SettingsPatch) model.SettingsPatch {
	out := model.SettingsPatch{}
	if p.AIContext != nil {
		v := truncateRunes(*p.AIContext, model.MaxSettingsTextLength)
		out.AIContext = &v
	}
	if p.AINotes != nil {
		v := truncateRunes(*p.AINotes, model.MaxSettingsTextLength)
		out.AINotes = &v
	}
	if p.AIAPIKey != nil {
		v := truncateRunes(strings.TrimSpace(*p.AIAPIKey), model.MaxAPIKeyLength)
		out.AIAPIKey = &v
	}
	if p.AIProvider != nil {
		// only one provider is wired
		v := defaultAIProvider
		out.AIProvider = &v
	}
	if p.Lists != nil {
		lists := make([]model.ListPreference, 0, len(*p.Lists))
		for _, l := range *p.Lists {
			lists = append(lists, model.ListPreference{
				ID:        truncateRunes(l.ID, model.MaxListIDLength),
				Name:      truncateRunes(l.Name, model.MaxListNameLength),
				Pinned:    l.Pinned,
				Collapsed: l.Collapsed,
				Order:     l.Order,
			})
		}
		out.Lists = &lists
	}
	return out
}
