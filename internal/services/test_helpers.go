package services

import (
	"context"
	"time"

	"github.com/tcollier/fieldhunt/internal/models"
)

// MockUserRepository implements the user repository interfaces for testing
type MockUserRepository struct {
	GetByIDFunc       func(ctx context.Context, id string) (*models.User, error)
	GetByUsernameFunc func(ctx context.Context, username string) (*models.User, error)
	ListFunc          func(ctx context.Context, limit, offset int) ([]*models.User, error)
	CreateFunc        func(ctx context.Context, user *models.User) (*models.User, error)
	SetPasswordFunc   func(ctx context.Context, id, passwordHash string) error
	SetAdminFunc      func(ctx context.Context, id string, isAdmin bool) error
	SetSeenIntroFunc  func(ctx context.Context, id string, seen bool) error
	DeleteFunc        func(ctx context.Context, id string) error
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.GetByUsernameFunc != nil {
		return m.GetByUsernameFunc(ctx, username)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return []*models.User{}, nil
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) SetPassword(ctx context.Context, id, passwordHash string) error {
	if m.SetPasswordFunc != nil {
		return m.SetPasswordFunc(ctx, id, passwordHash)
	}
	return nil
}

func (m *MockUserRepository) SetAdmin(ctx context.Context, id string, isAdmin bool) error {
	if m.SetAdminFunc != nil {
		return m.SetAdminFunc(ctx, id, isAdmin)
	}
	return nil
}

func (m *MockUserRepository) SetSeenIntro(ctx context.Context, id string, seen bool) error {
	if m.SetSeenIntroFunc != nil {
		return m.SetSeenIntroFunc(ctx, id, seen)
	}
	return nil
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockEvidenceRepository implements EvidenceReader and AdminEvidenceRepository for testing
type MockEvidenceRepository struct {
	GetByIDFunc       func(ctx context.Context, id int64) (*models.EvidenceItem, error)
	GetByScanCodeFunc func(ctx context.Context, scanCode string) (*models.EvidenceItem, error)
	AllFunc           func(ctx context.Context) ([]*models.EvidenceItem, error)
	CreateFunc        func(ctx context.Context, item *models.EvidenceItem) (*models.EvidenceItem, error)
	PatchFunc         func(ctx context.Context, id int64, patch models.EvidencePatch) (*models.EvidenceItem, error)
}

func (m *MockEvidenceRepository) GetByID(ctx context.Context, id int64) (*models.EvidenceItem, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockEvidenceRepository) GetByScanCode(ctx context.Context, scanCode string) (*models.EvidenceItem, error) {
	if m.GetByScanCodeFunc != nil {
		return m.GetByScanCodeFunc(ctx, scanCode)
	}
	return nil, models.ErrNotFound
}

func (m *MockEvidenceRepository) All(ctx context.Context) ([]*models.EvidenceItem, error) {
	if m.AllFunc != nil {
		return m.AllFunc(ctx)
	}
	return []*models.EvidenceItem{}, nil
}

func (m *MockEvidenceRepository) Create(ctx context.Context, item *models.EvidenceItem) (*models.EvidenceItem, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, item)
	}
	return nil, models.ErrInternalServer
}

func (m *MockEvidenceRepository) Patch(ctx context.Context, id int64, patch models.EvidencePatch) (*models.EvidenceItem, error) {
	if m.PatchFunc != nil {
		return m.PatchFunc(ctx, id, patch)
	}
	return nil, models.ErrInternalServer
}

// MockProgressRepository implements ProgressRepository and AdminProgressRepository for testing
type MockProgressRepository struct {
	InsertFoundFunc  func(ctx context.Context, userID string, itemID int64) (bool, error)
	InsertUnlockFunc func(ctx context.Context, userID string, itemID int64) (bool, error)
	ListStatesFunc   func(ctx context.Context, userID string) ([]*models.ItemState, error)
	ResetUserFunc    func(ctx context.Context, userID string) error
}

func (m *MockProgressRepository) InsertFound(ctx context.Context, userID string, itemID int64) (bool, error) {
	if m.InsertFoundFunc != nil {
		return m.InsertFoundFunc(ctx, userID, itemID)
	}
	return true, nil
}

func (m *MockProgressRepository) InsertUnlock(ctx context.Context, userID string, itemID int64) (bool, error) {
	if m.InsertUnlockFunc != nil {
		return m.InsertUnlockFunc(ctx, userID, itemID)
	}
	return true, nil
}

func (m *MockProgressRepository) ListStates(ctx context.Context, userID string) ([]*models.ItemState, error) {
	if m.ListStatesFunc != nil {
		return m.ListStatesFunc(ctx, userID)
	}
	return []*models.ItemState{}, nil
}

func (m *MockProgressRepository) ResetUser(ctx context.Context, userID string) error {
	if m.ResetUserFunc != nil {
		return m.ResetUserFunc(ctx, userID)
	}
	return nil
}

// MockSessionRepository implements SessionRepository for testing
type MockSessionRepository struct {
	InsertFunc  func(ctx context.Context, session *models.Session) error
	ResolveFunc func(ctx context.Context, token string, now time.Time) (string, error)
	DeleteFunc  func(ctx context.Context, token string) error
}

func (m *MockSessionRepository) Insert(ctx context.Context, session *models.Session) error {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, session)
	}
	return nil
}

func (m *MockSessionRepository) Resolve(ctx context.Context, token string, now time.Time) (string, error) {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, token, now)
	}
	return "", models.ErrNotFound
}

func (m *MockSessionRepository) Delete(ctx context.Context, token string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, token)
	}
	return nil
}

// MockSessionIssuer implements SessionIssuer for testing
type MockSessionIssuer struct {
	CreateFunc func(ctx context.Context, userID string) (*models.Session, error)
	RevokeFunc func(ctx context.Context, token string) error
}

func (m *MockSessionIssuer) Create(ctx context.Context, userID string) (*models.Session, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, userID)
	}
	return &models.Session{
		Token:     "session_" + userID,
		UserID:    userID,
		ExpiresAt: time.Now().Add(72 * time.Hour),
	}, nil
}

func (m *MockSessionIssuer) Revoke(ctx context.Context, token string) error {
	if m.RevokeFunc != nil {
		return m.RevokeFunc(ctx, token)
	}
	return nil
}

// MockCashoutRepository implements CashoutRepository for testing
type MockCashoutRepository struct {
	InsertFunc     func(ctx context.Context, token *models.CashoutToken) error
	PurgeStaleFunc func(ctx context.Context, userID string, now time.Time) error
	RedeemFunc     func(ctx context.Context, token string, amount int, now time.Time) (int, error)
}

func (m *MockCashoutRepository) Insert(ctx context.Context, token *models.CashoutToken) error {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, token)
	}
	return nil
}

func (m *MockCashoutRepository) PurgeStale(ctx context.Context, userID string, now time.Time) error {
	if m.PurgeStaleFunc != nil {
		return m.PurgeStaleFunc(ctx, userID, now)
	}
	return nil
}

func (m *MockCashoutRepository) Redeem(ctx context.Context, token string, amount int, now time.Time) (int, error) {
	if m.RedeemFunc != nil {
		return m.RedeemFunc(ctx, token, amount, now)
	}
	return 0, models.ErrNotFound
}

// NewTestUser constructs a player for tests
func NewTestUser(id, username string) *models.User {
	now := time.Now()
	return &models.User{
		ID:        id,
		Username:  username,
		Balance:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewTestAdmin constructs an admin for tests
func NewTestAdmin(id, username string) *models.User {
	user := NewTestUser(id, username)
	user.IsAdmin = true
	return user
}

// NewTestItem constructs a main-track evidence item for tests
func NewTestItem(id int64, title, scanCode, keyword string) *models.EvidenceItem {
	return &models.EvidenceItem{
		ID:       id,
		Title:    title,
		ScanCode: scanCode,
		Keyword:  keyword,
		Hint:     "hint for " + title,
		Filename: title + ".mp4",
	}
}

// NewTestBonusItem constructs a bonus item for tests
func NewTestBonusItem(id int64, title, scanCode, keyword string) *models.EvidenceItem {
	item := NewTestItem(id, title, scanCode, keyword)
	item.Bonus = true
	return item
}

// NewTestItemState wraps an item with per-user flags
func NewTestItemState(item *models.EvidenceItem, found, unlocked bool) *models.ItemState {
	return &models.ItemState{
		Item:     *item,
		Found:    found,
		Unlocked: unlocked,
	}
}
