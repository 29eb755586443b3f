package model

import (
	"context"

	"github.com/google/uuid"
)

const (
	MaxSettingsTextLength = 2000
	MaxAPIKeyLength       = 256
	MaxListIDLength       = 64
	MaxListNameLength     = 100
	DefaultListOrder      = 99
)

// SettingsStore persists one settings bag per user.
type SettingsStore interface {
	Get(ctx context.Context, userID uuid.UUID) (Settings, error)
	Save(ctx context.Context, userID uuid.UUID, settings Settings) error
}

// Settings is the per-user preferences bag. It is stored as a JSON document.
type Settings struct {
	AIContext  string           `json:"ai_context"`
	AINotes    string           `json:"ai_notes"`
	AIAPIKey   string           `json:"ai_api_key,omitempty"`
	AIProvider string           `json:"ai_provider,omitempty"`
	Lists      []ListPreference `json:"lists"`
}

// ListPreference holds display preferences of one task list.
type ListPreference struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Pinned    bool    `json:"pinned"`
	Collapsed bool    `json:"collapsed"`
	Order     float64 `json:"order"`
}

// SettingsPatch carries the settings fields present in a save request.
type SettingsPatch struct {
	AIContext  *string
	AINotes    *string
	AIAPIKey   *string
	AIProvider *string
	Lists      *[]ListPreference
}

// Merge applies p over s field by field and returns the result.
func (s Settings) Merge(p SettingsPatch) Settings {
	out := s
	if p.AIContext != nil {
		out.AIContext = *p.AIContext
	}
	if p.AINotes != nil {
		out.AINotes = *p.AINotes
	}
	if p.AIAPIKey != nil {
		out.AIAPIKey = *p.AIAPIKey
	}
	if p.AIProvider != nil {
		out.AIProvider = *p.AIProvider
	}
	if p.Lists != nil {
		out.Lists = append([]ListPreference(nil), (*p.Lists)...)
	}
	if out.Lists == nil {
		out.Lists = []ListPreference{}
	}
	return out
}
