package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	apiErrors "github.com/dtroode/taskflow-server/internal/api/errors"
	"github.com/dtroode/taskflow-server/internal/api/http/response"
	"github.com/dtroode/taskflow-server/internal/logger"
	"github.com/dtroode/taskflow-server/internal/model"
)

// AdminChecker reports whether a user may manage accounts.
type AdminChecker interface {
	RequireAdmin(ctx context.Context, userID uuid.UUID) error
}

// RequireAdmin must run after Authenticate.Handle.
type RequireAdmin struct {
	admins         AdminChecker
	contextManager model.ContextManager
	logger         *logger.Logger
}

func NewRequireAdmin(admins AdminChecker, contextManager model.ContextManager, logger *logger.Logger) *RequireAdmin {
	return &RequireAdmin{
		admins:         admins,
		contextManager: contextManager,
		logger:         logger,
	}
}

func (m *RequireAdmin) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := m.contextManager.GetUserIDFromContext(r.Context())
		if !ok {
			response.HandleError(w, r, apiErrors.NewErrNoSessionToken(), m.logger)
			return
		}
		if err := m.admins.RequireAdmin(r.Context(), userID); err != nil {
			response.HandleError(w, r, err, m.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}
