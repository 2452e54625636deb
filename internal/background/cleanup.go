package background

import (
	"context"
	"log/slog"
	"time"

	"github.com/tcollier/fieldhunt/internal/repositories"
)

// CleanupManager periodically removes expired sessions and stale cash-out
// tokens. Correctness never depends on it: both expire lazily at read
// time. This just keeps the tables from growing without bound.
type CleanupManager struct {
	sessions *repositories.SessionRepository
	cashouts *repositories.CashoutRepository
	logger   *slog.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(
	sessions *repositories.SessionRepository,
	cashouts *repositories.CashoutRepository,
	logger *slog.Logger,
	interval time.Duration,
) *CleanupManager {
	return &CleanupManager{
		sessions: sessions,
		cashouts: cashouts,
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic cleanup task
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	// Run immediately on startup
	cm.runCleanup(ctx)

	for {
		select {
		case <-ticker.C:
			cm.runCleanup(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

func (cm *CleanupManager) runCleanup(ctx context.Context) {
	cleanupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	now := time.Now()

	sessionsDeleted, err := cm.sessions.DeleteExpired(cleanupCtx, now)
	if err != nil {
		cm.logger.Error("failed to cleanup expired sessions", slog.Any("error", err))
	}

	tokensDeleted, err := cm.cashouts.DeleteExpired(cleanupCtx, now)
	if err != nil {
		cm.logger.Error("failed to cleanup stale cash-out tokens", slog.Any("error", err))
	}

	if sessionsDeleted > 0 || tokensDeleted > 0 {
		cm.logger.Info("cleanup completed",
			slog.Int64("sessions_deleted", sessionsDeleted),
			slog.Int64("cashout_tokens_deleted", tokensDeleted),
		)
	}
}

// Stop signals the cleanup manager to stop
func (cm *CleanupManager) Stop() {
	close(cm.stopCh)
}
