package middleware

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apiErrors "github.com/dtroode/taskflow-server/internal/api/errors"
	httpContext "github.com/dtroode/taskflow-server/internal/api/http/context"
	"github.com/dtroode/taskflow-server/internal/logger"
	"github.com/dtroode/taskflow-server/internal/metrics"
	"github.com/dtroode/taskflow-server/internal/mocks"
	"github.com/dtroode/taskflow-server/internal/testutil"
)

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func TestCORS(t *testing.T) {
	t.Parallel()

	called := false
	h := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	}))

	t.Run("preflight", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/anything", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Body.String())
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET, POST, PUT, PATCH, DELETE, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "Content-Type, Authorization, X-Session", w.Header().Get("Access-Control-Allow-Headers"))
		assert.False(t, called)
	})

	t.Run("regular request", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tasks", nil))

		assert.Equal(t, http.StatusTeapot, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.True(t, called)
	})
}

func TestBodyLimit(t *testing.T) {
	t.Parallel()

	var readErr error
	h := BodyLimit(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789")))

	var maxErr *http.MaxBytesError
	assert.True(t, errors.As(readErr, &maxErr))
}

func TestSessionToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{name: "none", want: ""},
		{name: "x-session", headers: map[string]string{"X-Session": "abc"}, want: "abc"},
		{name: "bearer", headers: map[string]string{"Authorization": "Bearer def"}, want: "def"},
		{name: "bearer lower case", headers: map[string]string{"Authorization": "bearer def"}, want: "def"},
		{name: "x-session wins", headers: map[string]string{"X-Session": "abc", "Authorization": "Bearer def"}, want: "abc"},
		{name: "basic ignored", headers: map[string]string{"Authorization": "Basic Zm9vOmJhcg=="}, want: ""},
		{name: "empty bearer", headers: map[string]string{"Authorization": "Bearer "}, want: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, SessionToken(r))
		})
	}
}

func TestAuthenticate_Handle(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	cm := httpContext.NewManager()

	tests := []struct {
		name       string
		token      string
		resolveID  uuid.UUID
		resolveErr error
		wantStatus int
		wantBody   string
	}{
		{name: "valid", token: "good", resolveID: userID, wantStatus: http.StatusNoContent},
		{name: "missing", token: "", resolveErr: apiErrors.NewErrNoSessionToken(), wantStatus: http.StatusUnauthorized, wantBody: `{"error":"No session token"}`},
		{name: "unknown", token: "bad", resolveErr: apiErrors.NewErrInvalidSession(), wantStatus: http.StatusUnauthorized, wantBody: `{"error":"Invalid session"}`},
		{name: "expired", token: "old", resolveErr: apiErrors.NewErrSessionExpired(), wantStatus: http.StatusUnauthorized, wantBody: `{"error":"Session expired"}`},
		{name: "store failure", token: "x", resolveErr: errors.New("db down"), wantStatus: http.StatusInternalServerError, wantBody: `{"error":"Internal server error"}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sessions := mocks.NewSessionResolver(t)
			sessions.On("Resolve", mock.Anything, tt.token).Return(tt.resolveID, tt.resolveErr)

			var seen uuid.UUID
			h := NewAuthenticate(sessions, cm, testutil.MakeNoopLogger()).Handle(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen, _ = cm.GetUserIDFromContext(r.Context())
				okHandler(w, r)
			}))

			r := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
			if tt.token != "" {
				r.Header.Set(SessionHeader, tt.token)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, w.Body.String())
				return
			}
			assert.Equal(t, userID, seen)
		})
	}
}

func TestAuthenticate_Optional(t *testing.T) {
	t.Parallel()

	cm := httpContext.NewManager()

	t.Run("anonymous passes through", func(t *testing.T) {
		t.Parallel()

		sessions := mocks.NewSessionResolver(t)
		var hasUser bool
		h := NewAuthenticate(sessions, cm, testutil.MakeNoopLogger()).Optional(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, hasUser = cm.GetUserIDFromContext(r.Context())
			okHandler(w, r)
		}))

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/categorize", nil))

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.False(t, hasUser)
		sessions.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
	})

	t.Run("present token must be valid", func(t *testing.T) {
		t.Parallel()

		sessions := mocks.NewSessionResolver(t)
		sessions.On("Resolve", mock.Anything, "bad").Return(uuid.Nil, apiErrors.NewErrInvalidSession())
		h := NewAuthenticate(sessions, cm, testutil.MakeNoopLogger()).Optional(http.HandlerFunc(okHandler))

		r := httptest.NewRequest(http.MethodPost, "/api/categorize", nil)
		r.Header.Set("Authorization", "Bearer bad")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	t.Parallel()

	cm := httpContext.NewManager()
	userID := uuid.New()

	t.Run("no user in context", func(t *testing.T) {
		t.Parallel()

		admins := mocks.NewAdminService(t)
		w := httptest.NewRecorder()
		NewRequireAdmin(admins, cm, testutil.MakeNoopLogger()).Handle(http.HandlerFunc(okHandler)).
			ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("not an admin", func(t *testing.T) {
		t.Parallel()

		admins := mocks.NewAdminService(t)
		admins.On("RequireAdmin", mock.Anything, userID).Return(apiErrors.NewErrForbidden("Admin access required"))

		r := httptest.NewRequest(http.MethodGet, "/api/admin", nil)
		r = r.WithContext(cm.SetUserIDToContext(r.Context(), userID))
		w := httptest.NewRecorder()
		NewRequireAdmin(admins, cm, testutil.MakeNoopLogger()).Handle(http.HandlerFunc(okHandler)).ServeHTTP(w, r)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.JSONEq(t, `{"error":"Admin access required"}`, w.Body.String())
	})

	t.Run("admin", func(t *testing.T) {
		t.Parallel()

		admins := mocks.NewAdminService(t)
		admins.On("RequireAdmin", mock.Anything, userID).Return(nil)

		r := httptest.NewRequest(http.MethodGet, "/api/admin", nil)
		r = r.WithContext(cm.SetUserIDToContext(r.Context(), userID))
		w := httptest.NewRecorder()
		NewRequireAdmin(admins, cm, testutil.MakeNoopLogger()).Handle(http.HandlerFunc(okHandler)).ServeHTTP(w, r)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestLogging(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h := NewLogging(logger.NewWithWriter(&buf, 0)).Handle(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/tasks", nil))

	out := buf.String()
	assert.Contains(t, out, "HTTP request completed")
	assert.Contains(t, out, "method=POST")
	assert.Contains(t, out, "path=/api/tasks")
	assert.Contains(t, out, "status=201")
}

func TestLogging_ServerErrorLoggedAsError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h := NewLogging(logger.NewWithWriter(&buf, 0)).Handle(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/tasks", nil))

	assert.Contains(t, buf.String(), "level=ERROR")
}

func TestMetrics_RecordsRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Patch("/api/tasks/{id}", okHandler)

	counter := metrics.HTTPRequests.WithLabelValues(http.MethodPatch, "/api/tasks/{id}", "204")
	before := promtest.ToFloat64(counter)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/api/tasks/abc", nil))
	require.Equal(t, http.StatusNoContent, w.Code)

	assert.Equal(t, before+1, promtest.ToFloat64(counter))
}
