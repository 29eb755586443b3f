package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	apiErrors "github.com/dtroode/taskflow-server/internal/api/errors"
	"github.com/dtroode/taskflow-server/internal/logger"
	"github.com/dtroode/taskflow-server/internal/model"
	"github.com/dtroode/taskflow-server/internal/pin"
)

// Admin manages user accounts on behalf of administrators.
type Admin struct {
	users    model.UserStore
	auth     *Auth
	sessions *Session
	logger   *logger.Logger
}

func NewAdmin(users model.UserStore, auth *Auth, sessions *Session, logger *logger.Logger) *Admin {
	return &Admin{
		users:    users,
		auth:     auth,
		sessions: sessions,
		logger:   logger,
	}
}

// RequireAdmin fails unless userID belongs to an active administrator.
func (s *Admin) RequireAdmin(ctx context.Context, userID uuid.UUID) error {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return apiErrors.NewErrForbidden("Admin access required")
	}
	if err != nil {
		return fmt.Errorf("failed to get user by id: %w", err)
	}
	if !user.IsAdmin || !user.IsActive {
		s.logger.Info("Admin service: non-admin access denied",
			"user_id", userID)
		return apiErrors.NewErrForbidden("Admin access required")
	}
	return nil
}

func (s *Admin) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *Admin) CreateUser(ctx context.Context, params model.CreateUserParams) (model.User, error) {
	user, err := s.auth.CreateUser(ctx, params)
	if err != nil {
		return model.User{}, err
	}

	s.logger.Info("Admin service: user created",
		"user_id", user.ID,
		"username", user.Username,
		"is_admin", user.IsAdmin)

	return user, nil
}

// UpdateUser applies an administrative change. Deactivating a user also
// deletes all of that user's sessions; the two writes are not atomic.
func (s *Admin) UpdateUser(ctx context.Context, params model.UpdateUserParams) error {
	if params.UserID == uuid.Nil {
		return apiErrors.NewErrValidation("user_id required")
	}

	update := model.UserUpdate{
		DisplayName: params.DisplayName,
		IsAdmin:     params.IsAdmin,
		IsActive:    params.IsActive,
	}
	if params.PIN != "" {
		if !pin.Valid(params.PIN) {
			return apiErrors.NewErrValidation("PIN must be 4-8 digits")
		}
		salt, hash, err := s.auth.derive(params.PIN)
		if err != nil {
			return err
		}
		update.PINSalt = &salt
		update.PINHash = &hash
	}

	result, err := s.users.Update(ctx, params.UserID, update)
	if err != nil {
		s.logger.Error("Admin service: failed to update user",
			"user_id", params.UserID,
			"error", err.Error())
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result == model.WriteNoMatchingRow {
		s.logger.Info("Admin service: update matched no user",
			"user_id", params.UserID)
	}

	if params.IsActive != nil && !*params.IsActive {
		if err := s.sessions.RevokeAll(ctx, params.UserID); err != nil {
			return err
		}
	}

	return nil
}
