package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/tcollier/fieldhunt/internal/models"
	"github.com/tcollier/fieldhunt/pkg/auth"
	"github.com/tcollier/fieldhunt/pkg/logger"
)

// CashoutRepository defines the interface for cash-out token data access
type CashoutRepository interface {
	Insert(ctx context.Context, token *models.CashoutToken) error
	PurgeStale(ctx context.Context, userID string, now time.Time) error
	Redeem(ctx context.Context, token string, amount int, now time.Time) (int, error)
}

// CashoutService runs the two-party redemption handshake: the user mints a
// short-lived single-use token, an admin scans it and confirms the amount.
type CashoutService struct {
	repo    CashoutRepository
	ttl     time.Duration
	baseURL string
	logger  *slog.Logger
	audit   *logger.AuditLogger
	now     func() time.Time
}

func NewCashoutService(
	repo CashoutRepository,
	ttl time.Duration,
	baseURL string,
	log *slog.Logger,
	audit *logger.AuditLogger,
) *CashoutService {
	return &CashoutService{
		repo:    repo,
		ttl:     ttl,
		baseURL: baseURL,
		logger:  log,
		audit:   audit,
		now:     time.Now,
	}
}

// GenerateToken mints a fresh cash-out token for the user, first purging
// the user's own used and expired tokens. Issuing alongside an existing
// active token is allowed; the stale ones just get swept.
func (s *CashoutService) GenerateToken(ctx context.Context, userID string) (*models.CashoutToken, string, error) {
	if err := s.repo.PurgeStale(ctx, userID, s.now()); err != nil {
		s.logger.Error("failed to purge stale cash-out tokens", slog.Any("error", err))
		return nil, "", models.ErrInternalServer
	}

	raw, err := auth.GenerateToken()
	if err != nil {
		s.logger.Error("failed to generate cash-out token", slog.Any("error", err))
		return nil, "", models.ErrInternalServer
	}

	token := &models.CashoutToken{
		Token:     raw,
		UserID:    userID,
		ExpiresAt: s.now().Add(s.ttl),
	}

	if err := s.repo.Insert(ctx, token); err != nil {
		s.logger.Error("failed to store cash-out token", slog.Any("error", err))
		return nil, "", models.ErrInternalServer
	}

	confirmURL := fmt.Sprintf("%s/cashout/confirm?token=%s", s.baseURL, url.QueryEscape(raw))

	s.logger.Info("cash-out token issued", slog.String("user_id", userID))
	return token, confirmURL, nil
}

// Redeem debits the token owner's balance and burns the token atomically.
// Failure reasons stay distinct so the admin UI can explain the denial.
func (s *CashoutService) Redeem(ctx context.Context, token, adminID string, amount int) (int, error) {
	newBalance, err := s.repo.Redeem(ctx, token, amount, s.now())
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound),
			errors.Is(err, models.ErrTokenExpired),
			errors.Is(err, models.ErrTokenUsed),
			errors.Is(err, models.ErrInvalidAmount):
			s.audit.Log(logger.AuditEvent{
				EventType:     "cashout_redeem",
				ActorID:       adminID,
				Success:       false,
				FailureReason: err.Error(),
			})
			return 0, err
		default:
			s.logger.Error("failed to redeem cash-out token", slog.Any("error", err))
			return 0, models.ErrInternalServer
		}
	}

	s.audit.Log(logger.AuditEvent{
		EventType: "cashout_redeem",
		ActorID:   adminID,
		Success:   true,
		Metadata:  map[string]string{"amount": fmt.Sprintf("%d", amount)},
	})

	return newBalance, nil
}
