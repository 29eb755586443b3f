package completion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/taskflow-server/internal/model"
	"github.com/dtroode/taskflow-server/internal/testutil"
)

func testRequest() model.CompletionRequest {
	return model.CompletionRequest{
		APIKey: "sk-test",
		Messages: []model.ChatMessage{
			{Role: "system", Content: "be brief"},
			{Role: "user", Content: "hello"},
		},
		Temperature: 0.3,
		MaxTokens:   200,
	}
}

func TestClient_Complete(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o-mini", body["model"])
		assert.Equal(t, 0.3, body["temperature"])
		assert.Equal(t, float64(200), body["max_tokens"])
		msgs, ok := body["messages"].([]any)
		require.True(t, ok)
		assert.Len(t, msgs, 2)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"gpt-4o-mini-2024-07-18","choices":[{"message":{"role":"assistant","content":"hi there"}}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/v1/", "gpt-4o-mini", time.Second, testutil.MakeNoopLogger())
	got, err := c.Complete(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "hi there", got.Content)
	assert.Equal(t, "gpt-4o-mini-2024-07-18", got.Model)
}

func TestClient_Complete_ModelFallback(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	got, err := New(srv.URL, "gpt-4o", time.Second, testutil.MakeNoopLogger()).Complete(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", got.Model)
}

func TestClient_Complete_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "upstream error message",
			status:     http.StatusUnauthorized,
			body:       `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`,
			wantStatus: http.StatusUnauthorized,
			wantMsg:    "Incorrect API key provided",
		},
		{
			name:       "empty body",
			status:     http.StatusBadGateway,
			wantStatus: http.StatusBadGateway,
			wantMsg:    "502 Bad Gateway",
		},
		{
			name:       "non json body",
			status:     http.StatusTooManyRequests,
			body:       "slow down",
			wantStatus: http.StatusTooManyRequests,
			wantMsg:    "429 Too Many Requests (raw: slow down)",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL, "m", time.Second, testutil.MakeNoopLogger()).Complete(context.Background(), testRequest())
			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
			assert.Equal(t, tt.wantMsg, apiErr.Error())
		})
	}
}

func TestClient_Complete_NoChoices(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "m", time.Second, testutil.MakeNoopLogger()).Complete(context.Background(), testRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestClient_Complete_Timeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := New(srv.URL, "m", 50*time.Millisecond, testutil.MakeNoopLogger()).Complete(context.Background(), testRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to send completion request")
}
