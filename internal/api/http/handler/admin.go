package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	apiErrors "github.com/dtroode/taskflow-server/internal/api/errors"
	"github.com/dtroode/taskflow-server/internal/api/http/response"
	"github.com/dtroode/taskflow-server/internal/logger"
	"github.com/dtroode/taskflow-server/internal/model"
)

// AdminService defines account management for administrators.
type AdminService interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	CreateUser(ctx context.Context, params model.CreateUserParams) (model.User, error)
	UpdateUser(ctx context.Context, params model.UpdateUserParams) error
}

// Admin handles /api/admin. Routes are expected behind RequireAdmin.
type Admin struct {
	adminService AdminService
	logger       *logger.Logger
}

func NewAdmin(adminService AdminService, logger *logger.Logger) *Admin {
	return &Admin{
		adminService: adminService,
		logger:       logger,
	}
}

type userResponse struct {
	UserID      uuid.UUID `json:"user_id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	IsAdmin     bool      `json:"is_admin"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListUsers returns every account without credential material.
func (h *Admin) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.adminService.ListUsers(r.Context())
	if err != nil {
		response.HandleError(w, r, err, h.logger)
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userResponse{
			UserID:      u.ID,
			Username:    u.Username,
			DisplayName: u.DisplayName,
			IsAdmin:     u.IsAdmin,
			IsActive:    u.IsActive,
			CreatedAt:   u.CreatedAt,
		})
	}

	response.JSON(w, http.StatusOK, map[string]any{"users": out})
}

type createUserRequest struct {
	Username    string     `json:"username"`
	PIN         flexString `json:"pin"`
	DisplayName string     `json:"display_name"`
	IsAdmin     bool       `json:"is_admin"`
}

func (h *Admin) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		response.HandleError(w, r, err, h.logger)
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.PIN == "" {
		response.HandleError(w, r, apiErrors.NewErrValidation("username and pin required"), h.logger)
		return
	}

	user, err := h.adminService.CreateUser(r.Context(), model.CreateUserParams{
		Username:    req.Username,
		PIN:         string(req.PIN),
		DisplayName: req.DisplayName,
		IsAdmin:     req.IsAdmin,
	})
	if err != nil {
		response.HandleError(w, r, err, h.logger)
		return
	}

	response.JSON(w, http.StatusCreated, map[string]any{
		"success":  true,
		"user_id":  user.ID,
		"username": user.Username,
	})
}

type updateUserRequest struct {
	UserID      string     `json:"user_id"`
	PIN         flexString `json:"pin"`
	DisplayName *string    `json:"display_name"`
	IsAdmin     *bool      `json:"is_admin"`
	IsActive    *bool      `json:"is_active"`
}

func (h *Admin) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		response.HandleError(w, r, err, h.logger)
		return
	}

	params := model.UpdateUserParams{
		PIN:         string(req.PIN),
		DisplayName: req.DisplayName,
		IsAdmin:     req.IsAdmin,
		IsActive:    req.IsActive,
	}
	if id := strings.TrimSpace(req.UserID); id != "" {
		userID, err := uuid.Parse(id)
		if err != nil {
			response.HandleError(w, r, apiErrors.NewErrValidation("Invalid user_id"), h.logger)
			return
		}
		params.UserID = userID
	}

	if err := h.adminService.UpdateUser(r.Context(), params); err != nil {
		response.HandleError(w, r, err, h.logger)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{"success": true})
}
