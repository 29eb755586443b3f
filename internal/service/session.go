package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	apiErrors "github.com/dtroode/taskflow-server/internal/api/errors"
	"github.com/dtroode/taskflow-server/internal/logger"
	"github.com/dtroode/taskflow-server/internal/model"
)

// Session issues and resolves opaque session tokens.
type Session struct {
	store  model.SessionStore
	tokens model.TokenGenerator
	ttl    time.Duration
	now    func() time.Time
	logger *logger.Logger
}

func NewSession(store model.SessionStore, tokens model.TokenGenerator, ttl time.Duration, logger *logger.Logger) *Session {
	if ttl <= 0 {
		ttl = model.DefaultSessionTTL
	}
	return &Session{
		store:  store,
		tokens: tokens,
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
}

// Issue creates and stores a new session for userID.
func (s *Session) Issue(ctx context.Context, userID uuid.UUID) (model.Session, error) {
	token, err := s.tokens.Generate()
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to generate session token: %w", err)
	}

	now := s.now()
	session := model.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.store.Create(ctx, session); err != nil {
		return model.Session{}, fmt.Errorf("failed to store session: %w", err)
	}

	return session, nil
}

// Resolve maps a presented token to its user. It has no side effects.
func (s *Session) Resolve(ctx context.Context, token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, apiErrors.NewErrNoSessionToken()
	}

	session, err := s.store.GetByToken(ctx, token)
	if errors.Is(err, model.ErrNotFound) {
		return uuid.Nil, apiErrors.NewErrInvalidSession()
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to get session: %w", err)
	}

	if !session.ValidAt(s.now()) {
		return uuid.Nil, apiErrors.NewErrSessionExpired()
	}

	return session.UserID, nil
}

// SweepExpired removes expired sessions. Failures are logged and swallowed.
func (s *Session) SweepExpired(ctx context.Context) {
	removed, err := s.store.DeleteExpired(ctx, s.now())
	if err != nil {
		s.logger.Warn("Session service: failed to sweep expired sessions",
			"error", err.Error())
		return
	}
	if removed > 0 {
		s.logger.Debug("Session service: swept expired sessions",
			"removed", removed)
	}
}

// RevokeAll deletes every session of userID.
func (s *Session) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	removed, err := s.store.DeleteByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user sessions: %w", err)
	}
	s.logger.Info("Session service: revoked user sessions",
		"user_id", userID,
		"removed", removed)
	return nil
}
