package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apiErrors "github.com/dtroode/taskflow-server/internal/api/errors"
	"github.com/dtroode/taskflow-server/internal/mocks"
	"github.com/dtroode/taskflow-server/internal/model"
	"github.com/dtroode/taskflow-server/internal/testutil"
)

func TestTask_List(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	due := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	created := time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)

	tasks := mocks.NewTaskService(t)
	tasks.On("List", mock.Anything, userID).Return(model.TaskList{
		Open: []model.Task{{
			ID: "t1", Text: "Call Ann", Category: model.CategoryPeople, ListName: "Ann",
			DueDate: &due, Priority: model.PriorityHigh, CreatedAt: created, LastModified: created,
		}},
		Archived: []model.Task{{
			ID: "t2", Text: "Old", Category: model.CategoryActions, ListName: model.DefaultListName,
			Priority: model.PriorityNone, IsArchived: true, CreatedAt: created, LastModified: created,
		}},
	}, nil)

	w := httptest.NewRecorder()
	NewTask(tasks, contextManager, testutil.MakeNoopLogger()).List(w, newRequest(http.MethodGet, "/api/tasks", "", userID))

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)

	open := body["tasks"].([]any)
	require.Len(t, open, 1)
	first := open[0].(map[string]any)
	assert.Equal(t, "t1", first["id"])
	assert.Equal(t, "Ann", first["listName"])
	assert.Equal(t, "2024-05-01", first["dueDate"])
	assert.Equal(t, "high", first["priority"])
	assert.Equal(t, []any{}, first["tags"])
	assert.Nil(t, first["completedAt"])

	archived := body["archived"].([]any)
	require.Len(t, archived, 1)
	assert.Equal(t, true, archived[0].(map[string]any)["isArchived"])
}

func TestTask_List_Empty(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	tasks := mocks.NewTaskService(t)
	tasks.On("List", mock.Anything, userID).Return(model.TaskList{}, nil)

	w := httptest.NewRecorder()
	NewTask(tasks, contextManager, testutil.MakeNoopLogger()).List(w, newRequest(http.MethodGet, "/api/tasks", "", userID))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"tasks":[],"archived":[]}`, w.Body.String())
}

func TestTask_List_NoUser(t *testing.T) {
	t.Parallel()

	tasks := mocks.NewTaskService(t)

	w := httptest.NewRecorder()
	NewTask(tasks, contextManager, testutil.MakeNoopLogger()).List(w, newRequest(http.MethodGet, "/api/tasks", "", uuid.Nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"No session token"}`, w.Body.String())
}

func TestTask_Create(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	tasks := mocks.NewTaskService(t)
	tasks.On("Save", mock.Anything, userID, model.TaskInput{
		ID:        "t1",
		Text:      ptr("Buy milk"),
		ListName:  ptr("Errands"),
		Completed: ptr(false),
	}).Return("t1", nil)

	w := httptest.NewRecorder()
	NewTask(tasks, contextManager, testutil.MakeNoopLogger()).Create(w,
		newRequest(http.MethodPost, "/api/tasks", `{"id":"t1","text":"Buy milk","list_name":"Errands","done":false}`, userID))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"id":"t1"}`, w.Body.String())
}

func TestTask_Create_Errors(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
		wantBody   string
	}{
		{name: "malformed json", body: `{"id":`, wantStatus: http.StatusBadRequest, wantBody: `{"error":"Invalid JSON body"}`},
		{name: "bad field type", body: `{"id":"t1","completed":"yes"}`, wantStatus: http.StatusBadRequest, wantBody: `{"error":"Invalid completed"}`},
		{name: "validation", body: `{"text":"x"}`, serviceErr: apiErrors.NewErrValidation("Missing id or text"), wantStatus: http.StatusBadRequest, wantBody: `{"error":"Missing id or text"}`},
		{name: "store failure", body: `{"id":"t1","text":"x"}`, serviceErr: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantBody: `{"error":"Internal server error"}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tasks := mocks.NewTaskService(t)
			if tt.serviceErr != nil {
				tasks.On("Save", mock.Anything, userID, mock.Anything).Return("", tt.serviceErr)
			}

			w := httptest.NewRecorder()
			NewTask(tasks, contextManager, testutil.MakeNoopLogger()).Create(w, newRequest(http.MethodPost, "/api/tasks", tt.body, userID))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestTask_Update_IDSources(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	tests := []struct {
		name   string
		target string
		param  string
		body   string
		wantID string
	}{
		{name: "path", target: "/api/tasks/p1", param: "p1", body: `{"id":"b1","completed":true}`, wantID: "p1"},
		{name: "query", target: "/api/tasks?id=q1", body: `{"id":"b1","completed":true}`, wantID: "q1"},
		{name: "body", target: "/api/tasks", body: `{"id":"b1","completed":true}`, wantID: "b1"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tasks := mocks.NewTaskService(t)
			tasks.On("Update", mock.Anything, userID, model.TaskInput{
				ID:        tt.wantID,
				Completed: ptr(true),
			}).Return(model.WriteUpdated, nil)

			r := newRequest(http.MethodPatch, tt.target, tt.body, userID)
			if tt.param != "" {
				r = withURLParam(r, "id", tt.param)
			}
			w := httptest.NewRecorder()
			NewTask(tasks, contextManager, testutil.MakeNoopLogger()).Update(w, r)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, `{"success":true}`, w.Body.String())
		})
	}
}

func TestTask_Update_ForeignTaskStillSucceeds(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	tasks := mocks.NewTaskService(t)
	tasks.On("Update", mock.Anything, userID, mock.Anything).Return(model.WriteNoMatchingRow, nil)

	w := httptest.NewRecorder()
	NewTask(tasks, contextManager, testutil.MakeNoopLogger()).Update(w,
		withURLParam(newRequest(http.MethodPut, "/api/tasks/other", `{"text":"x"}`, userID), "id", "other"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
}

func TestTask_Update_ValidationError(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	tasks := mocks.NewTaskService(t)
	tasks.On("Update", mock.Anything, userID, mock.Anything).Return(model.WriteNoMatchingRow, apiErrors.NewErrValidation("Missing id"))

	w := httptest.NewRecorder()
	NewTask(tasks, contextManager, testutil.MakeNoopLogger()).Update(w, newRequest(http.MethodPatch, "/api/tasks", `{"text":"x"}`, userID))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Missing id"}`, w.Body.String())
}

func TestTask_Delete(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	tests := []struct {
		name   string
		target string
		param  string
		body   string
		wantID string
	}{
		{name: "path", target: "/api/tasks/p1", param: "p1", wantID: "p1"},
		{name: "query", target: "/api/tasks?id=q1", wantID: "q1"},
		{name: "body", target: "/api/tasks", body: `{"id":"b1"}`, wantID: "b1"},
		{name: "numeric body id", target: "/api/tasks", body: `{"id":17}`, wantID: "17"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tasks := mocks.NewTaskService(t)
			tasks.On("Delete", mock.Anything, userID, tt.wantID).Return(model.WriteNoMatchingRow, nil)

			r := newRequest(http.MethodDelete, tt.target, tt.body, userID)
			if tt.param != "" {
				r = withURLParam(r, "id", tt.param)
			}
			w := httptest.NewRecorder()
			NewTask(tasks, contextManager, testutil.MakeNoopLogger()).Delete(w, r)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, `{"success":true}`, w.Body.String())
		})
	}
}
