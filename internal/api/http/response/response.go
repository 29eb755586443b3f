// Package response writes JSON envelopes shared by handlers and middleware.
package response

import (
	"encoding/json"
	"errors"
	"net/http"

	apiErrors "github.com/dtroode/taskflow-server/internal/api/errors"
	"github.com/dtroode/taskflow-server/internal/logger"
)

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes {"error": message}.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// HandleError maps err to its response. Only *apiErrors.APIError messages
// reach the caller; anything else is logged and reported as a 500.
func HandleError(w http.ResponseWriter, r *http.Request, err error, logger *logger.Logger) {
	var apiErr *apiErrors.APIError
	if errors.As(err, &apiErr) {
		Error(w, apiErr.Status, apiErr.Message)
		return
	}

	logger.Error("HTTP: internal error",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err.Error())
	Error(w, http.StatusInternalServerError, "Internal server error")
}
