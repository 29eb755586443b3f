package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSettings_Merge(t *testing.T) {
	t.Parallel()

	stored := Settings{
		AIContext: "old context",
		AINotes:   "keep me",
		AIAPIKey:  "sk-old",
		Lists:     []ListPreference{{ID: "a", Name: "A", Order: 1}},
	}

	newContext := "new context"
	merged := stored.Merge(SettingsPatch{AIContext: &newContext})

	assert.Equal(t, "new context", merged.AIContext)
	assert.Equal(t, "keep me", merged.AINotes)
	assert.Equal(t, "sk-old", merged.AIAPIKey)
	assert.Equal(t, stored.Lists, merged.Lists)
}

func TestSettings_Merge_ReplacesListsWholesale(t *testing.T) {
	t.Parallel()

	stored := Settings{Lists: []ListPreference{{ID: "a"}, {ID: "b"}}}
	lists := []ListPreference{{ID: "c", Pinned: true}}

	merged := stored.Merge(SettingsPatch{Lists: &lists})

	assert.Equal(t, []ListPreference{{ID: "c", Pinned: true}}, merged.Lists)
	lists[0].ID = "mutated"
	assert.Equal(t, "c", merged.Lists[0].ID)
}

func TestSettings_Merge_EmptyListsNeverNil(t *testing.T) {
	t.Parallel()

	merged := Settings{}.Merge(SettingsPatch{})
	assert.NotNil(t, merged.Lists)
	assert.Empty(t, merged.Lists)
}
