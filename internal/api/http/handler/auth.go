package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/dtroode/taskflow-server/internal/api/http/middleware"
	"github.com/dtroode/taskflow-server/internal/api/http/response"
	"github.com/dtroode/taskflow-server/internal/logger"
	"github.com/dtroode/taskflow-server/internal/model"
)

// AuthService defines PIN login and rotation.
type AuthService interface {
	Login(ctx context.Context, params model.LoginParams) (model.AuthResult, error)
	SetPIN(ctx context.Context, params model.SetPINParams) (model.AuthResult, error)
}

// Auth handles /api/auth and /api/auth/set.
type Auth struct {
	authService AuthService
	logger      *logger.Logger
}

func NewAuth(authService AuthService, logger *logger.Logger) *Auth {
	return &Auth{
		authService: authService,
		logger:      logger,
	}
}

type loginRequest struct {
	Username string     `json:"username"`
	PIN      flexString `json:"pin"`
}

type loginResponse struct {
	Token       string    `json:"token"`
	UserID      uuid.UUID `json:"user_id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	IsAdmin     bool      `json:"is_admin"`
}

// Login verifies a PIN and returns a new session token.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		response.HandleError(w, r, err, h.logger)
		return
	}

	result, err := h.authService.Login(r.Context(), model.LoginParams{
		Username: req.Username,
		PIN:      string(req.PIN),
	})
	if err != nil {
		response.HandleError(w, r, err, h.logger)
		return
	}

	response.JSON(w, http.StatusOK, loginResponse{
		Token:       result.Token,
		UserID:      result.User.ID,
		Username:    result.User.Username,
		DisplayName: result.User.DisplayName,
		IsAdmin:     result.User.IsAdmin,
	})
}

type setPINRequest struct {
	PIN          flexString `json:"pin"`
	CurrentToken string     `json:"current_token"`
	Username     string     `json:"username"`
	DisplayName  string     `json:"display_name"`
}

// SetPIN bootstraps the first user or rotates the caller's PIN.
func (h *Auth) SetPIN(w http.ResponseWriter, r *http.Request) {
	var req setPINRequest
	if err := decodeJSON(r, &req); err != nil {
		response.HandleError(w, r, err, h.logger)
		return
	}

	token := req.CurrentToken
	if token == "" {
		token = middleware.SessionToken(r)
	}

	result, err := h.authService.SetPIN(r.Context(), model.SetPINParams{
		PIN:          string(req.PIN),
		SessionToken: token,
		Username:     req.Username,
		DisplayName:  req.DisplayName,
	})
	if err != nil {
		response.HandleError(w, r, err, h.logger)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{
		"token":   result.Token,
		"message": result.Message,
	})
}
