package services

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"

	"github.com/tcollier/fieldhunt/internal/models"
)

// EvidenceReader is the catalog subset the progress engine needs.
type EvidenceReader interface {
	GetByID(ctx context.Context, id int64) (*models.EvidenceItem, error)
	GetByScanCode(ctx context.Context, scanCode string) (*models.EvidenceItem, error)
}

// ProgressRepository defines the interface for progress data access
type ProgressRepository interface {
	InsertFound(ctx context.Context, userID string, itemID int64) (bool, error)
	InsertUnlock(ctx context.Context, userID string, itemID int64) (bool, error)
	ListStates(ctx context.Context, userID string) ([]*models.ItemState, error)
}

// ProgressUserRepository is the user subset the progress engine needs.
type ProgressUserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	SetSeenIntro(ctx context.Context, id string, seen bool) error
}

// ProgressService is the per-user state machine over evidence items:
// unknown -> found -> unlocked, with reward accrual on first unlock.
type ProgressService struct {
	evidence EvidenceReader
	progress ProgressRepository
	users    ProgressUserRepository
	logger   *slog.Logger
}

func NewProgressService(
	evidence EvidenceReader,
	progress ProgressRepository,
	users ProgressUserRepository,
	logger *slog.Logger,
) *ProgressService {
	return &ProgressService{
		evidence: evidence,
		progress: progress,
		users:    users,
		logger:   logger,
	}
}

// RecordFound marks the item behind scanCode as found. A repeat scan is a
// success with alreadyFound=true and no side effect.
func (s *ProgressService) RecordFound(ctx context.Context, userID, scanCode string) (*models.EvidenceItem, bool, error) {
	item, err := s.evidence.GetByScanCode(ctx, scanCode)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, false, models.ErrNotFound
		}
		s.logger.Error("failed to look up scan code", slog.Any("error", err))
		return nil, false, models.ErrInternalServer
	}

	inserted, err := s.progress.InsertFound(ctx, userID, item.ID)
	if err != nil {
		s.logger.Error("failed to record found",
			slog.String("user_id", userID),
			slog.Int64("item_id", item.ID),
			slog.Any("error", err))
		return nil, false, models.ErrInternalServer
	}

	if inserted {
		s.logger.Info("item found",
			slog.String("user_id", userID),
			slog.Int64("item_id", item.ID))
	}

	return item, !inserted, nil
}

// AttemptUnlock checks the submitted keyword against the item. A correct
// keyword inserts the unlock record; the first insert for the pair credits
// the balance by exactly 1. A repeat correct submission reports
// AlreadyUnlocked with no balance change. A wrong keyword is the normal
// negative outcome, not an error.
//
// No prior found record is required; a successful unlock upserts one.
func (s *ProgressService) AttemptUnlock(ctx context.Context, userID string, itemID int64, keyword string) (models.UnlockOutcome, error) {
	item, err := s.evidence.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.UnlockIncorrect, models.ErrNotFound
		}
		s.logger.Error("failed to look up item", slog.Any("error", err))
		return models.UnlockIncorrect, models.ErrInternalServer
	}

	if !KeywordMatches(item.Keyword, keyword) {
		return models.UnlockIncorrect, nil
	}

	inserted, err := s.progress.InsertUnlock(ctx, userID, itemID)
	if err != nil {
		s.logger.Error("failed to record unlock",
			slog.String("user_id", userID),
			slog.Int64("item_id", itemID),
			slog.Any("error", err))
		return models.UnlockIncorrect, models.ErrInternalServer
	}

	if !inserted {
		return models.AlreadyUnlocked, nil
	}

	s.logger.Info("item unlocked",
		slog.String("user_id", userID),
		slog.Int64("item_id", itemID))
	return models.Unlocked, nil
}

// ComputeStatus partitions the catalog into the user's found, unlocked,
// and missing items, with counts over the main track only. Bonus items
// carry the same annotations but never affect completion.
func (s *ProgressService) ComputeStatus(ctx context.Context, userID string) (*models.StatusSummary, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to load user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	states, err := s.progress.ListStates(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list item states", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	summary := &models.StatusSummary{
		Main:      make([]models.ItemState, 0, len(states)),
		Bonus:     make([]models.ItemState, 0),
		Balance:   user.Balance,
		SeenIntro: user.SeenIntro,
	}

	unfound := make([]*models.ItemState, 0)

	for _, st := range states {
		if st.Item.Bonus {
			summary.Bonus = append(summary.Bonus, *st)
			continue
		}

		summary.Main = append(summary.Main, *st)
		summary.TotalCount++
		if st.Unlocked {
			summary.UnlockedCount++
		}
		if st.Found {
			summary.FoundCount++
		} else {
			unfound = append(unfound, st)
		}
	}

	summary.AllSolved = summary.TotalCount > 0 && summary.UnlockedCount == summary.TotalCount
	summary.ActiveHint = selectHint(userID, unfound)

	return summary, nil
}

// MarkIntroSeen records that the introduction screen was shown.
func (s *ProgressService) MarkIntroSeen(ctx context.Context, userID string) error {
	if err := s.users.SetSeenIntro(ctx, userID, true); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to mark intro seen", slog.Any("error", err))
		return models.ErrInternalServer
	}
	return nil
}

// selectHint picks one unfound main item's hint, stable across requests
// until the unfound set changes. FNV-1a over the user id and the sorted
// unfound ids; any deterministic, roughly uniform function would do.
func selectHint(userID string, unfound []*models.ItemState) string {
	if len(unfound) == 0 {
		return ""
	}

	h := fnv.New64a()
	h.Write([]byte(userID))
	for _, st := range unfound { // already in ascending id order
		fmt.Fprintf(h, "|%d", st.Item.ID)
	}

	return unfound[h.Sum64()%uint64(len(unfound))].Item.Hint
}
