package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	apiErrors "github.com/dtroode/taskflow-server/internal/api/errors"
	"github.com/dtroode/taskflow-server/internal/logger"
	"github.com/dtroode/taskflow-server/internal/model"
	"github.com/dtroode/taskflow-server/internal/pin"
)

// dummySalt feeds the hash computed for unknown users.
const dummySalt = "00000000000000000000000000000000"

// Auth verifies and rotates PIN credentials and creates accounts.
type Auth struct {
	users           model.UserStore
	sessions        *Session
	hasher          *pin.Hasher
	defaultUsername string
	now             func() time.Time
	logger          *logger.Logger
}

func NewAuth(
	users model.UserStore,
	sessions *Session,
	hasher *pin.Hasher,
	defaultUsername string,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		users:           users,
		sessions:        sessions,
		hasher:          hasher,
		defaultUsername: defaultUsername,
		now:             time.Now,
		logger:          logger,
	}
}

// Login verifies a PIN and issues a session. Every credential failure yields
// the same error.
func (a *Auth) Login(ctx context.Context, params model.LoginParams) (model.AuthResult, error) {
	if !pin.Valid(params.PIN) {
		return model.AuthResult{}, apiErrors.NewErrValidation("PIN must be 4-8 digits")
	}

	user, err := a.findLoginUser(ctx, normalizeUsername(params.Username))
	if err != nil {
		return model.AuthResult{}, err
	}

	if user.ID == uuid.Nil {
		a.hasher.Verify(params.PIN, dummySalt, "")
		a.logger.Info("Auth service: login for unknown user",
			"username", params.Username)
		return model.AuthResult{}, apiErrors.NewErrInvalidCredential()
	}

	if !a.hasher.Verify(params.PIN, user.PINSalt, user.PINHash) || !user.IsActive {
		a.logger.Info("Auth service: login rejected",
			"user_id", user.ID,
			"active", user.IsActive)
		return model.AuthResult{}, apiErrors.NewErrInvalidCredential()
	}

	session, err := a.sessions.Issue(ctx, user.ID)
	if err != nil {
		a.logger.Error("Auth service: failed to issue session",
			"user_id", user.ID,
			"error", err.Error())
		return model.AuthResult{}, fmt.Errorf("failed to issue session: %w", err)
	}

	a.sessions.SweepExpired(ctx)

	a.logger.Info("Auth service: login succeeded",
		"user_id", user.ID)

	return model.AuthResult{Token: session.Token, User: user}, nil
}

// findLoginUser returns a zero User when nobody matches. An empty username
// resolves to the only user of a single-user install.
func (a *Auth) findLoginUser(ctx context.Context, username string) (model.User, error) {
	if username != "" {
		user, err := a.users.GetByUsername(ctx, username)
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, nil
		}
		if err != nil {
			return model.User{}, fmt.Errorf("failed to get user by username: %w", err)
		}
		return user, nil
	}

	users, err := a.users.List(ctx)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to list users: %w", err)
	}
	if len(users) != 1 {
		return model.User{}, nil
	}
	return users[0], nil
}

// SetPIN rotates the PIN of the session's user. When no user exists yet it
// bootstraps the first account as an administrator without a session.
func (a *Auth) SetPIN(ctx context.Context, params model.SetPINParams) (model.AuthResult, error) {
	if !pin.Valid(params.PIN) {
		return model.AuthResult{}, apiErrors.NewErrValidation("PIN must be 4-8 digits")
	}

	count, err := a.users.Count(ctx)
	if err != nil {
		return model.AuthResult{}, fmt.Errorf("failed to count users: %w", err)
	}

	if count == 0 {
		return a.bootstrap(ctx, params)
	}

	userID, err := a.sessions.Resolve(ctx, params.SessionToken)
	if err != nil {
		var apiErr *apiErrors.APIError
		if errors.As(err, &apiErr) {
			return model.AuthResult{}, apiErrors.NewErrSessionRequired()
		}
		return model.AuthResult{}, err
	}

	user, err := a.users.GetByID(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return model.AuthResult{}, apiErrors.NewErrInvalidSession()
	}
	if err != nil {
		return model.AuthResult{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	salt, hash, err := a.derive(params.PIN)
	if err != nil {
		return model.AuthResult{}, err
	}

	if _, err := a.users.Update(ctx, user.ID, model.UserUpdate{PINHash: &hash, PINSalt: &salt}); err != nil {
		a.logger.Error("Auth service: failed to update PIN",
			"user_id", user.ID,
			"error", err.Error())
		return model.AuthResult{}, fmt.Errorf("failed to update pin: %w", err)
	}

	session, err := a.sessions.Issue(ctx, user.ID)
	if err != nil {
		return model.AuthResult{}, fmt.Errorf("failed to issue session: %w", err)
	}

	a.logger.Info("Auth service: PIN changed",
		"user_id", user.ID)

	return model.AuthResult{Token: session.Token, User: user, Message: "PIN updated successfully"}, nil
}

func (a *Auth) bootstrap(ctx context.Context, params model.SetPINParams) (model.AuthResult, error) {
	username := params.Username
	if strings.TrimSpace(username) == "" {
		username = a.defaultUsername
	}

	user, err := a.CreateUser(ctx, model.CreateUserParams{
		Username:    username,
		PIN:         params.PIN,
		DisplayName: params.DisplayName,
		IsAdmin:     true,
	})
	if err != nil {
		return model.AuthResult{}, err
	}

	session, err := a.sessions.Issue(ctx, user.ID)
	if err != nil {
		return model.AuthResult{}, fmt.Errorf("failed to issue session: %w", err)
	}

	a.logger.Info("Auth service: first user bootstrapped",
		"user_id", user.ID,
		"username", user.Username)

	return model.AuthResult{Token: session.Token, User: user, Message: "PIN set successfully"}, nil
}

// CreateUser validates and stores a new account.
func (a *Auth) CreateUser(ctx context.Context, params model.CreateUserParams) (model.User, error) {
	username := normalizeUsername(params.Username)
	if username == "" {
		return model.User{}, apiErrors.NewErrValidation("username and pin required")
	}
	if !pin.Valid(params.PIN) {
		return model.User{}, apiErrors.NewErrValidation("PIN must be 4-8 digits")
	}

	salt, hash, err := a.derive(params.PIN)
	if err != nil {
		return model.User{}, err
	}

	displayName := strings.TrimSpace(params.DisplayName)
	if displayName == "" {
		displayName = strings.TrimSpace(params.Username)
	}

	now := a.now()
	user, err := a.users.Create(ctx, model.User{
		ID:          uuid.New(),
		Username:    username,
		DisplayName: displayName,
		PINHash:     hash,
		PINSalt:     salt,
		IsAdmin:     params.IsAdmin,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if errors.Is(err, model.ErrAlreadyExists) {
		return model.User{}, apiErrors.NewErrUsernameTaken(username)
	}
	if err != nil {
		a.logger.Error("Auth service: failed to create user",
			"username", username,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func (a *Auth) derive(pinValue string) (salt, hash string, err error) {
	salt, err = a.hasher.NewSalt()
	if err != nil {
		return "", "", fmt.Errorf("failed to derive pin hash: %w", err)
	}
	return salt, a.hasher.Hash(pinValue, salt), nil
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
