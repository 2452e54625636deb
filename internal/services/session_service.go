package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/tcollier/fieldhunt/internal/models"
	"github.com/tcollier/fieldhunt/pkg/auth"
)

// SessionRepository defines the interface for session data access
type SessionRepository interface {
	Insert(ctx context.Context, session *models.Session) error
	Resolve(ctx context.Context, token string, now time.Time) (string, error)
	Delete(ctx context.Context, token string) error
}

// SessionService issues, resolves, and revokes opaque bearer tokens.
type SessionService struct {
	repo   SessionRepository
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

func NewSessionService(repo SessionRepository, ttl time.Duration, logger *slog.Logger) *SessionService {
	return &SessionService{
		repo:   repo,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Create mints a new session with absolute expiry now + TTL.
func (s *SessionService) Create(ctx context.Context, userID string) (*models.Session, error) {
	token, err := auth.GenerateToken()
	if err != nil {
		s.logger.Error("failed to generate session token", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	session := &models.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: s.now().Add(s.ttl),
	}

	if err := s.repo.Insert(ctx, session); err != nil {
		s.logger.Error("failed to store session", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return session, nil
}

// Resolve returns the owning user id, or ErrUnauthorized for absent and
// expired tokens alike.
func (s *SessionService) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", models.ErrUnauthorized
	}

	userID, err := s.repo.Resolve(ctx, token, s.now())
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", models.ErrUnauthorized
		}
		s.logger.Error("failed to resolve session", slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	return userID, nil
}

// Revoke deletes the session. Revoking an unknown token is a no-op success.
func (s *SessionService) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	if err := s.repo.Delete(ctx, token); err != nil {
		s.logger.Error("failed to revoke session", slog.Any("error", err))
		return models.ErrInternalServer
	}

	return nil
}

// TTL exposes the configured session lifetime for cookie max-age.
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}
