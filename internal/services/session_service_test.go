package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tcollier/fieldhunt/internal/models"
)

func TestSessionService_Create(t *testing.T) {
	var stored *models.Session
	repo := &MockSessionRepository{
		InsertFunc: func(ctx context.Context, session *models.Session) error {
			stored = session
			return nil
		},
	}

	svc := NewSessionService(repo, 72*time.Hour, slog.Default())

	session, err := svc.Create(context.Background(), "user123")

	assert.NoError(t, err)
	assert.NotNil(t, stored)
	assert.Equal(t, "user123", session.UserID)
	assert.NotEmpty(t, session.Token)
	assert.True(t, session.ExpiresAt.After(time.Now().Add(71*time.Hour)))
}

func TestSessionService_Create_UniqueTokens(t *testing.T) {
	repo := &MockSessionRepository{
		InsertFunc: func(ctx context.Context, session *models.Session) error { return nil },
	}

	svc := NewSessionService(repo, time.Hour, slog.Default())

	first, err := svc.Create(context.Background(), "user123")
	assert.NoError(t, err)
	second, err := svc.Create(context.Background(), "user123")
	assert.NoError(t, err)

	assert.NotEqual(t, first.Token, second.Token)
}

func TestSessionService_Resolve_Success(t *testing.T) {
	repo := &MockSessionRepository{
		ResolveFunc: func(ctx context.Context, token string, now time.Time) (string, error) {
			assert.Equal(t, "tok-1", token)
			return "user123", nil
		},
	}

	svc := NewSessionService(repo, time.Hour, slog.Default())

	userID, err := svc.Resolve(context.Background(), "tok-1")

	assert.NoError(t, err)
	assert.Equal(t, "user123", userID)
}

func TestSessionService_Resolve_EmptyToken(t *testing.T) {
	svc := NewSessionService(&MockSessionRepository{}, time.Hour, slog.Default())

	_, err := svc.Resolve(context.Background(), "")

	assert.Equal(t, models.ErrUnauthorized, err)
}

func TestSessionService_Resolve_ExpiredOrUnknown(t *testing.T) {
	// The repository hides expired sessions behind ErrNotFound; the caller
	// only ever sees ErrUnauthorized.
	repo := &MockSessionRepository{
		ResolveFunc: func(ctx context.Context, token string, now time.Time) (string, error) {
			return "", models.ErrNotFound
		},
	}

	svc := NewSessionService(repo, time.Hour, slog.Default())

	_, err := svc.Resolve(context.Background(), "stale-token")

	assert.Equal(t, models.ErrUnauthorized, err)
}

func TestSessionService_Revoke_UnknownTokenIsNoop(t *testing.T) {
	repo := &MockSessionRepository{
		DeleteFunc: func(ctx context.Context, token string) error { return nil },
	}

	svc := NewSessionService(repo, time.Hour, slog.Default())

	assert.NoError(t, svc.Revoke(context.Background(), "never-issued"))
	assert.NoError(t, svc.Revoke(context.Background(), ""))
}
