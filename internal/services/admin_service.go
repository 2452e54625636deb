package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tcollier/fieldhunt/internal/models"
	"github.com/tcollier/fieldhunt/pkg/auth"
	"github.com/tcollier/fieldhunt/pkg/logger"
)

// AdminUserRepository is the user subset the admin surface needs.
type AdminUserRepository interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
	SetPassword(ctx context.Context, id, passwordHash string) error
	SetAdmin(ctx context.Context, id string, isAdmin bool) error
	Delete(ctx context.Context, id string) error
}

// AdminEvidenceRepository is the catalog subset the admin surface needs.
type AdminEvidenceRepository interface {
	GetByID(ctx context.Context, id int64) (*models.EvidenceItem, error)
	All(ctx context.Context) ([]*models.EvidenceItem, error)
	Create(ctx context.Context, item *models.EvidenceItem) (*models.EvidenceItem, error)
	Patch(ctx context.Context, id int64, patch models.EvidencePatch) (*models.EvidenceItem, error)
}

// AdminProgressRepository is the progress subset the admin surface needs.
type AdminProgressRepository interface {
	ResetUser(ctx context.Context, userID string) error
}

// AdminService holds the privileged mutations. Access gating happens in
// middleware; every method here assumes the actor is already an admin.
type AdminService struct {
	users    AdminUserRepository
	evidence AdminEvidenceRepository
	progress AdminProgressRepository
	logger   *slog.Logger
	audit    *logger.AuditLogger
}

func NewAdminService(
	users AdminUserRepository,
	evidence AdminEvidenceRepository,
	progress AdminProgressRepository,
	log *slog.Logger,
	audit *logger.AuditLogger,
) *AdminService {
	return &AdminService{
		users:    users,
		evidence: evidence,
		progress: progress,
		logger:   log,
		audit:    audit,
	}
}

// ListItems returns the full catalog, keywords included, for the admin
// console and QR provisioning.
func (s *AdminService) ListItems(ctx context.Context) ([]*models.EvidenceItem, error) {
	items, err := s.evidence.All(ctx)
	if err != nil {
		s.logger.Error("failed to list evidence items", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return items, nil
}

// GetItem fetches one catalog item.
func (s *AdminService) GetItem(ctx context.Context, id int64) (*models.EvidenceItem, error) {
	item, err := s.evidence.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get evidence item", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return item, nil
}

// CreateItem adds a new evidence item to the catalog.
func (s *AdminService) CreateItem(ctx context.Context, actorID string, item *models.EvidenceItem) (*models.EvidenceItem, error) {
	created, err := s.evidence.Create(ctx, item)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create evidence item", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.audit.LogAdminAction("item_create", actorID, map[string]string{"title": created.Title})
	return created, nil
}

// PatchItem applies a partial update; only supplied fields change. A scan
// code that collides with another item's surfaces as ErrConflict.
func (s *AdminService) PatchItem(ctx context.Context, actorID string, id int64, patch models.EvidencePatch) (*models.EvidenceItem, error) {
	if patch.IsEmpty() {
		return nil, models.ErrBadRequest
	}

	updated, err := s.evidence.Patch(ctx, id, patch)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrConflict) {
			return nil, err
		}
		s.logger.Error("failed to patch evidence item", slog.Int64("item_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.audit.LogAdminAction("item_patch", actorID, map[string]string{"title": updated.Title})
	return updated, nil
}

// ListUsers returns users for the admin console.
func (s *AdminService) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error("failed to list users", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return users, nil
}

// ResetUser deletes all found/unlock records and active cash-out tokens for
// the named user and zeroes the balance.
func (s *AdminService) ResetUser(ctx context.Context, actorID, username string) error {
	user, err := s.lookup(ctx, username)
	if err != nil {
		return err
	}

	if err := s.progress.ResetUser(ctx, user.ID); err != nil {
		s.logger.Error("failed to reset user", slog.String("username", username), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.audit.LogAdminAction("user_reset", actorID, map[string]string{"target": username})
	return nil
}

// DeleteUser removes the user and, via cascade, every found, unlock,
// session, and cash-out row belonging to them.
func (s *AdminService) DeleteUser(ctx context.Context, actorID, username string) error {
	user, err := s.lookup(ctx, username)
	if err != nil {
		return err
	}

	if err := s.users.Delete(ctx, user.ID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete user", slog.String("username", username), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.audit.LogAdminAction("user_delete", actorID, map[string]string{"target": username})
	return nil
}

// ToggleAdmin flips the named user's admin flag and returns the new state.
func (s *AdminService) ToggleAdmin(ctx context.Context, actorID, username string) (bool, error) {
	user, err := s.lookup(ctx, username)
	if err != nil {
		return false, err
	}

	newState := !user.IsAdmin
	if err := s.users.SetAdmin(ctx, user.ID, newState); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return false, models.ErrNotFound
		}
		s.logger.Error("failed to toggle admin", slog.String("username", username), slog.Any("error", err))
		return false, models.ErrInternalServer
	}

	s.audit.LogAdminAction("user_toggle_admin", actorID, map[string]string{"target": username})
	return newState, nil
}

// ResetPassword re-hashes and stores an admin-supplied credential.
func (s *AdminService) ResetPassword(ctx context.Context, actorID, username, newPassword string) error {
	user, err := s.lookup(ctx, username)
	if err != nil {
		return err
	}

	if err := auth.ValidatePassword(newPassword); err != nil {
		return models.ErrBadRequest
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.users.SetPassword(ctx, user.ID, hash); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to set password", slog.String("username", username), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.audit.LogAdminAction("user_password_reset", actorID, map[string]string{"target": username})
	return nil
}

func (s *AdminService) lookup(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to look up user", slog.String("username", username), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return user, nil
}
