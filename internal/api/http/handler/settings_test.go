package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/taskflow-server/internal/mocks"
	"github.com/dtroode/taskflow-server/internal/model"
	"github.com/dtroode/taskflow-server/internal/testutil"
)

func TestSettings_Get_HidesAPIKey(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	settings := mocks.NewSettingsService(t)
	settings.On("Get", mock.Anything, userID).Return(model.Settings{
		AIContext:  "I run a bakery",
		AIAPIKey:   "sk-secret",
		AIProvider: "openai",
	}, nil)

	w := httptest.NewRecorder()
	NewSettings(settings, contextManager, testutil.MakeNoopLogger()).Get(w, newRequest(http.MethodGet, "/api/settings", "", userID))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "sk-secret")
	assert.JSONEq(t, `{"settings":{"ai_context":"I run a bakery","ai_notes":"","ai_provider":"openai","ai_api_key_set":true,"lists":[]}}`, w.Body.String())
}

func TestSettings_Save(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	settings := mocks.NewSettingsService(t)
	settings.On("Save", mock.Anything, userID, mock.MatchedBy(func(p model.SettingsPatch) bool {
		return p.AIContext != nil && *p.AIContext == "ctx" &&
			p.AINotes == nil &&
			p.AIAPIKey != nil && *p.AIAPIKey == "sk-new" &&
			p.Lists == nil
	})).Return(model.Settings{AIContext: "ctx", AIAPIKey: "sk-new"}, nil)

	w := httptest.NewRecorder()
	NewSettings(settings, contextManager, testutil.MakeNoopLogger()).Save(w,
		newRequest(http.MethodPost, "/api/settings", `{"settings":{"ai_context":"ctx","ai_api_key":"sk-new"}}`, userID))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"settings":{"ai_context":"ctx","ai_notes":"","ai_api_key_set":true,"lists":[]}}`, w.Body.String())
}

func TestSettings_Save_InvalidPayload(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	for _, body := range []string{`{}`, `{"settings":null}`, `{"settings":"x"}`, `{"settings":[1]}`} {
		body := body
		t.Run(body, func(t *testing.T) {
			t.Parallel()

			settings := mocks.NewSettingsService(t)

			w := httptest.NewRecorder()
			NewSettings(settings, contextManager, testutil.MakeNoopLogger()).Save(w, newRequest(http.MethodPost, "/api/settings", body, userID))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"error":"Invalid settings payload"}`, w.Body.String())
		})
	}
}

func TestSettingsPatch_Coercion(t *testing.T) {
	t.Parallel()

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(`{
		"ai_context": 42,
		"ai_notes": null,
		"lists": [
			{"id": 7, "name": "Home", "pinned": 1, "collapsed": "", "order": 2},
			{"id": null, "name": false, "pinned": "yes", "collapsed": 0, "order": "first"},
			{}
		]
	}`), &fields))

	p := settingsPatch(fields)

	require.NotNil(t, p.AIContext)
	assert.Equal(t, "", *p.AIContext)
	require.NotNil(t, p.AINotes)
	assert.Equal(t, "", *p.AINotes)
	assert.Nil(t, p.AIAPIKey)
	assert.Nil(t, p.AIProvider)

	require.NotNil(t, p.Lists)
	assert.Equal(t, []model.ListPreference{
		{ID: "7", Name: "Home", Pinned: true, Collapsed: false, Order: 2},
		{ID: "", Name: "", Pinned: true, Collapsed: false, Order: model.DefaultListOrder},
		{Order: model.DefaultListOrder},
	}, *p.Lists)
}

func TestSettingsPatch_ListsNotAnArray(t *testing.T) {
	t.Parallel()

	p := settingsPatch(map[string]json.RawMessage{"lists": json.RawMessage(`"nope"`)})

	require.NotNil(t, p.Lists)
	assert.Empty(t, *p.Lists)
}

func TestTruthy(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		``:       false,
		`null`:   false,
		`false`:  false,
		`""`:     false,
		`0`:      false,
		`0.0`:    false,
		`true`:   true,
		`1`:      true,
		`"0"`:    true,
		`[]`:     true,
		`{}`:     true,
		`"text"`: true,
	}

	for raw, want := range tests {
		assert.Equal(t, want, truthy(json.RawMessage(raw)), raw)
	}
}
