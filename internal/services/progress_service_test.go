package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tcollier/fieldhunt/internal/models"
)

func newProgressService(evidence *MockEvidenceRepository, progress *MockProgressRepository, users *MockUserRepository) *ProgressService {
	return NewProgressService(evidence, progress, users, slog.Default())
}

func TestProgressService_RecordFound_FirstScan(t *testing.T) {
	item := NewTestItem(1, "Cranium", "code-1", "cranium")

	evidence := &MockEvidenceRepository{
		GetByScanCodeFunc: func(ctx context.Context, scanCode string) (*models.EvidenceItem, error) {
			assert.Equal(t, "code-1", scanCode)
			return item, nil
		},
	}
	progress := &MockProgressRepository{
		InsertFoundFunc: func(ctx context.Context, userID string, itemID int64) (bool, error) {
			assert.Equal(t, "user123", userID)
			assert.Equal(t, int64(1), itemID)
			return true, nil
		},
	}

	svc := newProgressService(evidence, progress, &MockUserRepository{})

	got, alreadyFound, err := svc.RecordFound(context.Background(), "user123", "code-1")

	assert.NoError(t, err)
	assert.False(t, alreadyFound)
	assert.Equal(t, item, got)
}

func TestProgressService_RecordFound_RepeatScanIsIdempotent(t *testing.T) {
	item := NewTestItem(1, "Cranium", "code-1", "cranium")

	evidence := &MockEvidenceRepository{
		GetByScanCodeFunc: func(ctx context.Context, scanCode string) (*models.EvidenceItem, error) {
			return item, nil
		},
	}
	progress := &MockProgressRepository{
		InsertFoundFunc: func(ctx context.Context, userID string, itemID int64) (bool, error) {
			return false, nil // row already existed
		},
	}

	svc := newProgressService(evidence, progress, &MockUserRepository{})

	got, alreadyFound, err := svc.RecordFound(context.Background(), "user123", "code-1")

	assert.NoError(t, err)
	assert.True(t, alreadyFound)
	assert.Equal(t, item, got)
}

func TestProgressService_RecordFound_UnknownCode(t *testing.T) {
	evidence := &MockEvidenceRepository{
		GetByScanCodeFunc: func(ctx context.Context, scanCode string) (*models.EvidenceItem, error) {
			return nil, models.ErrNotFound
		},
	}

	svc := newProgressService(evidence, &MockProgressRepository{}, &MockUserRepository{})

	got, _, err := svc.RecordFound(context.Background(), "user123", "bogus")

	assert.Nil(t, got)
	assert.Equal(t, models.ErrNotFound, err)
}

func TestProgressService_AttemptUnlock_CorrectKeyword(t *testing.T) {
	item := NewTestItem(1, "Cranium", "code-1", "cranium")

	evidence := &MockEvidenceRepository{
		GetByIDFunc: func(ctx context.Context, id int64) (*models.EvidenceItem, error) {
			return item, nil
		},
	}
	inserted := false
	progress := &MockProgressRepository{
		InsertUnlockFunc: func(ctx context.Context, userID string, itemID int64) (bool, error) {
			inserted = true
			return true, nil
		},
	}

	svc := newProgressService(evidence, progress, &MockUserRepository{})

	outcome, err := svc.AttemptUnlock(context.Background(), "user123", 1, "Cr AnI-um!")

	assert.NoError(t, err)
	assert.Equal(t, models.Unlocked, outcome)
	assert.True(t, inserted)
}

func TestProgressService_AttemptUnlock_RepeatIsAlreadyUnlocked(t *testing.T) {
	item := NewTestItem(1, "Cranium", "code-1", "cranium")

	evidence := &MockEvidenceRepository{
		GetByIDFunc: func(ctx context.Context, id int64) (*models.EvidenceItem, error) {
			return item, nil
		},
	}
	progress := &MockProgressRepository{
		InsertUnlockFunc: func(ctx context.Context, userID string, itemID int64) (bool, error) {
			return false, nil // unlock row already existed, no reward
		},
	}

	svc := newProgressService(evidence, progress, &MockUserRepository{})

	outcome, err := svc.AttemptUnlock(context.Background(), "user123", 1, "cranium")

	assert.NoError(t, err)
	assert.Equal(t, models.AlreadyUnlocked, outcome)
}

func TestProgressService_AttemptUnlock_WrongKeywordIsNotAnError(t *testing.T) {
	item := NewTestItem(1, "Cranium", "code-1", "cranium")

	evidence := &MockEvidenceRepository{
		GetByIDFunc: func(ctx context.Context, id int64) (*models.EvidenceItem, error) {
			return item, nil
		},
	}
	progress := &MockProgressRepository{
		InsertUnlockFunc: func(ctx context.Context, userID string, itemID int64) (bool, error) {
			t.Fatal("wrong keyword must not touch the repository")
			return false, nil
		},
	}

	svc := newProgressService(evidence, progress, &MockUserRepository{})

	outcome, err := svc.AttemptUnlock(context.Background(), "user123", 1, "talons")

	assert.NoError(t, err)
	assert.Equal(t, models.UnlockIncorrect, outcome)
}

func TestProgressService_AttemptUnlock_UnknownItem(t *testing.T) {
	evidence := &MockEvidenceRepository{
		GetByIDFunc: func(ctx context.Context, id int64) (*models.EvidenceItem, error) {
			return nil, models.ErrNotFound
		},
	}

	svc := newProgressService(evidence, &MockProgressRepository{}, &MockUserRepository{})

	_, err := svc.AttemptUnlock(context.Background(), "user123", 99, "cranium")

	assert.Equal(t, models.ErrNotFound, err)
}

func TestProgressService_ComputeStatus_PartitionsAndCounts(t *testing.T) {
	states := []*models.ItemState{
		NewTestItemState(NewTestItem(1, "One", "c1", "k1"), true, true),
		NewTestItemState(NewTestItem(2, "Two", "c2", "k2"), true, false),
		NewTestItemState(NewTestItem(3, "Three", "c3", "k3"), false, false),
		NewTestItemState(NewTestItem(4, "Four", "c4", "k4"), false, false),
		NewTestItemState(NewTestItem(5, "Five", "c5", "k5"), false, false),
		NewTestItemState(NewTestBonusItem(6, "Bonus", "c6", "k6"), true, false),
	}

	progress := &MockProgressRepository{
		ListStatesFunc: func(ctx context.Context, userID string) ([]*models.ItemState, error) {
			return states, nil
		},
	}
	users := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			user := NewTestUser("user123", "player")
			user.Balance = 1
			return user, nil
		},
	}

	svc := newProgressService(&MockEvidenceRepository{}, progress, users)

	summary, err := svc.ComputeStatus(context.Background(), "user123")

	assert.NoError(t, err)
	assert.Len(t, summary.Main, 5)
	assert.Len(t, summary.Bonus, 1)
	assert.Equal(t, 5, summary.TotalCount)
	assert.Equal(t, 2, summary.FoundCount) // unlocked items still count as found
	assert.Equal(t, 1, summary.UnlockedCount)
	assert.False(t, summary.AllSolved)
	assert.Equal(t, 1, summary.Balance)
	assert.NotEmpty(t, summary.ActiveHint)
}

func TestProgressService_ComputeStatus_AllSolved(t *testing.T) {
	states := []*models.ItemState{
		NewTestItemState(NewTestItem(1, "One", "c1", "k1"), true, true),
		NewTestItemState(NewTestItem(2, "Two", "c2", "k2"), true, true),
		// An unfound bonus item must not block completion.
		NewTestItemState(NewTestBonusItem(3, "Bonus", "c3", "k3"), false, false),
	}

	progress := &MockProgressRepository{
		ListStatesFunc: func(ctx context.Context, userID string) ([]*models.ItemState, error) {
			return states, nil
		},
	}
	users := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return NewTestUser("user123", "player"), nil
		},
	}

	svc := newProgressService(&MockEvidenceRepository{}, progress, users)

	summary, err := svc.ComputeStatus(context.Background(), "user123")

	assert.NoError(t, err)
	assert.True(t, summary.AllSolved)
	assert.Empty(t, summary.ActiveHint) // nothing left to find on the main track
}

func TestProgressService_ComputeStatus_EmptyCatalogIsNotSolved(t *testing.T) {
	progress := &MockProgressRepository{
		ListStatesFunc: func(ctx context.Context, userID string) ([]*models.ItemState, error) {
			return []*models.ItemState{}, nil
		},
	}
	users := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return NewTestUser("user123", "player"), nil
		},
	}

	svc := newProgressService(&MockEvidenceRepository{}, progress, users)

	summary, err := svc.ComputeStatus(context.Background(), "user123")

	assert.NoError(t, err)
	assert.False(t, summary.AllSolved)
	assert.Empty(t, summary.ActiveHint)
}

func TestProgressService_ComputeStatus_HintIsStable(t *testing.T) {
	states := func() []*models.ItemState {
		return []*models.ItemState{
			NewTestItemState(NewTestItem(1, "One", "c1", "k1"), false, false),
			NewTestItemState(NewTestItem(2, "Two", "c2", "k2"), false, false),
			NewTestItemState(NewTestItem(3, "Three", "c3", "k3"), false, false),
		}
	}

	progress := &MockProgressRepository{
		ListStatesFunc: func(ctx context.Context, userID string) ([]*models.ItemState, error) {
			return states(), nil
		},
	}
	users := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return NewTestUser("user123", "player"), nil
		},
	}

	svc := newProgressService(&MockEvidenceRepository{}, progress, users)

	first, err := svc.ComputeStatus(context.Background(), "user123")
	assert.NoError(t, err)

	// Same user, same unfound set, same hint every time.
	for i := 0; i < 10; i++ {
		again, err := svc.ComputeStatus(context.Background(), "user123")
		assert.NoError(t, err)
		assert.Equal(t, first.ActiveHint, again.ActiveHint)
	}
}

func TestProgressService_MarkIntroSeen(t *testing.T) {
	var gotID string
	users := &MockUserRepository{
		SetSeenIntroFunc: func(ctx context.Context, id string, seen bool) error {
			gotID = id
			assert.True(t, seen)
			return nil
		},
	}

	svc := newProgressService(&MockEvidenceRepository{}, &MockProgressRepository{}, users)

	err := svc.MarkIntroSeen(context.Background(), "user123")

	assert.NoError(t, err)
	assert.Equal(t, "user123", gotID)
}
