package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tcollier/fieldhunt/internal/models"
	"github.com/tcollier/fieldhunt/pkg/auth"
	"github.com/tcollier/fieldhunt/pkg/logger"
)

// AuthUserRepository is the user subset the credential store needs.
type AuthUserRepository interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
}

// SessionIssuer is implemented by SessionService.
type SessionIssuer interface {
	Create(ctx context.Context, userID string) (*models.Session, error)
	Revoke(ctx context.Context, token string) error
}

// AuthService verifies credentials and exchanges them for sessions.
type AuthService struct {
	users    AuthUserRepository
	sessions SessionIssuer
	logger   *slog.Logger
	audit    *logger.AuditLogger
}

func NewAuthService(
	users AuthUserRepository,
	sessions SessionIssuer,
	log *slog.Logger,
	audit *logger.AuditLogger,
) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		logger:   log,
		audit:    audit,
	}
}

// Register creates a player account. Duplicate usernames fail with
// ErrConflict.
func (s *AuthService) Register(ctx context.Context, username, password string) (*models.User, error) {
	if err := auth.ValidatePassword(password); err != nil {
		return nil, models.ErrBadRequest
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	user, err := s.users.Create(ctx, &models.User{
		Username:     username,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			s.audit.LogAuthAttempt("register", "", "", false, "duplicate username")
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.audit.LogAuthAttempt("register", user.ID, "", true, "")
	s.logger.Info("user registered", slog.String("user_id", user.ID))
	return user, nil
}

// Login verifies the credential and issues a session. Unknown username and
// wrong password both return ErrUnauthorized so callers can't enumerate
// accounts.
func (s *AuthService) Login(ctx context.Context, username, password, ip string) (*models.User, *models.Session, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.audit.LogAuthAttempt("login", "", ip, false, "unknown username")
			return nil, nil, models.ErrUnauthorized
		}
		s.logger.Error("failed to look up user", slog.Any("error", err))
		return nil, nil, models.ErrInternalServer
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		s.audit.LogAuthAttempt("login", user.ID, ip, false, "wrong password")
		return nil, nil, models.ErrUnauthorized
	}

	session, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	s.audit.LogAuthAttempt("login", user.ID, ip, true, "")
	return user, session, nil
}

// Logout revokes the session; unknown tokens are a no-op success.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Revoke(ctx, token)
}
