package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/taskflow-server/internal/mocks"
	"github.com/dtroode/taskflow-server/internal/model"
	"github.com/dtroode/taskflow-server/internal/testutil"
)

type exportFixture struct {
	export   *Export
	tasks    *mocks.TaskStore
	settings *mocks.SettingsStore
	storage  *mocks.Storage
}

func newExportFixture(t *testing.T) exportFixture {
	tasks := mocks.NewTaskStore(t)
	settings := mocks.NewSettingsStore(t)
	storage := mocks.NewStorage(t)
	log := testutil.MakeNoopLogger()

	e := NewExport(NewTask(tasks, log), NewSettings(settings, log), storage, log)
	e.now = fixedClock
	return exportFixture{export: e, tasks: tasks, settings: settings, storage: storage}
}

func TestExport_Create(t *testing.T) {
	f := newExportFixture(t)
	userID := uuid.New()

	f.tasks.On("ListByUser", mock.Anything, userID).Return([]model.Task{
		{ID: "a", Text: "open one", Category: model.CategoryActions, CreatedAt: fixedNow, LastModified: fixedNow},
		{ID: "b", Text: "old one", IsArchived: true, CreatedAt: fixedNow, LastModified: fixedNow},
	}, nil)
	f.settings.On("Get", mock.Anything, userID).Return(model.Settings{AIContext: "ctx", AIAPIKey: "sk-secret"}, nil)

	wantKey := "exports/" + userID.String() + "/20250310T093000Z.json"
	var body []byte
	f.storage.On("Upload", mock.Anything, wantKey, mock.Anything, mock.Anything, "application/json").
		Run(func(args mock.Arguments) {
			var err error
			body, err = io.ReadAll(args.Get(2).(io.Reader))
			require.NoError(t, err)
			assert.Equal(t, int64(len(body)), args.Get(3).(int64))
		}).Return(nil)

	key, err := f.export.Create(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, wantKey, key)

	assert.NotContains(t, string(body), "sk-secret")

	var doc struct {
		Tasks    []map[string]any `json:"tasks"`
		Archived []map[string]any `json:"archived"`
		Settings map[string]any   `json:"settings"`
	}
	require.NoError(t, json.Unmarshal(body, &doc))
	require.Len(t, doc.Tasks, 1)
	assert.Equal(t, "a", doc.Tasks[0]["id"])
	require.Len(t, doc.Archived, 1)
	assert.Equal(t, "b", doc.Archived[0]["id"])
	assert.Equal(t, "ctx", doc.Settings["ai_context"])
}

func TestExport_Create_UploadError(t *testing.T) {
	f := newExportFixture(t)
	f.tasks.On("ListByUser", mock.Anything, mock.Anything).Return(nil, nil)
	f.settings.On("Get", mock.Anything, mock.Anything).Return(model.Settings{}, model.ErrNotFound)
	f.storage.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("bucket gone"))

	_, err := f.export.Create(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to upload export")
}

func TestExport_Open(t *testing.T) {
	f := newExportFixture(t)
	userID := uuid.New()
	key := "exports/" + userID.String() + "/20250310T093000Z.json"

	f.storage.On("Exists", mock.Anything, key).Return(true, nil)
	f.storage.On("Download", mock.Anything, key).Return(io.NopCloser(strings.NewReader(`{}`)), nil)

	rc, err := f.export.Open(context.Background(), userID, "20250310T093000Z.json")
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))
}

func TestExport_Open_Errors(t *testing.T) {
	t.Run("traversal rejected", func(t *testing.T) {
		f := newExportFixture(t)
		_, err := f.export.Open(context.Background(), uuid.New(), "../other.json")
		requireAPIError(t, err, http.StatusBadRequest)
	})

	t.Run("missing export", func(t *testing.T) {
		f := newExportFixture(t)
		f.storage.On("Exists", mock.Anything, mock.Anything).Return(false, nil)

		_, err := f.export.Open(context.Background(), uuid.New(), "nope.json")
		requireAPIError(t, err, http.StatusNotFound)
	})
}
