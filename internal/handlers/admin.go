package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/tcollier/fieldhunt/internal/auth"
	"github.com/tcollier/fieldhunt/internal/models"
	"github.com/tcollier/fieldhunt/internal/qr"
	pkghttp "github.com/tcollier/fieldhunt/pkg/http"
)

// AdminService defines the interface for privileged mutations
type AdminService interface {
	ListItems(ctx context.Context) ([]*models.EvidenceItem, error)
	GetItem(ctx context.Context, id int64) (*models.EvidenceItem, error)
	CreateItem(ctx context.Context, actorID string, item *models.EvidenceItem) (*models.EvidenceItem, error)
	PatchItem(ctx context.Context, actorID string, id int64, patch models.EvidencePatch) (*models.EvidenceItem, error)
	ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error)
	ResetUser(ctx context.Context, actorID, username string) error
	DeleteUser(ctx context.Context, actorID, username string) error
	ToggleAdmin(ctx context.Context, actorID, username string) (bool, error)
	ResetPassword(ctx context.Context, actorID, username, newPassword string) error
}

// AdminHandler serves the admin console endpoints. Admin gating happens in
// middleware before any of these run.
type AdminHandler struct {
	service AdminService
	baseURL string
}

func NewAdminHandler(service AdminService, baseURL string) *AdminHandler {
	return &AdminHandler{
		service: service,
		baseURL: baseURL,
	}
}

type ItemResponse struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	ScanCode string `json:"scan_code"`
	Keyword  string `json:"keyword"`
	Hint     string `json:"hint"`
	Filename string `json:"filename"`
	Bonus    bool   `json:"bonus"`
}

type CreateItemRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	ScanCode string `json:"scan_code" validate:"required,max=100"`
	Keyword  string `json:"keyword" validate:"required,max=100"`
	Hint     string `json:"hint"`
	Filename string `json:"filename"`
	Bonus    bool   `json:"bonus"`
}

type PatchItemRequest struct {
	Title    *string `json:"title"`
	ScanCode *string `json:"scan_code"`
	Keyword  *string `json:"keyword"`
	Hint     *string `json:"hint"`
	Filename *string `json:"filename"`
	Bonus    *bool   `json:"bonus"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required"`
}

type ToggleAdminResponse struct {
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

func itemModelToResponse(item *models.EvidenceItem) *ItemResponse {
	return &ItemResponse{
		ID:       item.ID,
		Title:    item.Title,
		ScanCode: item.ScanCode,
		Keyword:  item.Keyword,
		Hint:     item.Hint,
		Filename: item.Filename,
		Bonus:    item.Bonus,
	}
}

func itemIDFromURL(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// ListItems returns the full catalog with keywords.
func (h *AdminHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListItems(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	resp := make([]*ItemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, itemModelToResponse(item))
	}

	pkghttp.WriteJSON(w, http.StatusOK, resp)
}

// CreateItem adds a new evidence item.
func (h *AdminHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	actor := auth.UserFromContext(r)

	var req CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	created, err := h.service.CreateItem(r.Context(), actor.ID, &models.EvidenceItem{
		Title:    req.Title,
		ScanCode: req.ScanCode,
		Keyword:  req.Keyword,
		Hint:     req.Hint,
		Filename: req.Filename,
		Bonus:    req.Bonus,
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			pkghttp.WriteConflict(w, "Scan code already in use")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, itemModelToResponse(created))
}

// PatchItem applies a partial update to an item.
func (h *AdminHandler) PatchItem(w http.ResponseWriter, r *http.Request) {
	actor := auth.UserFromContext(r)

	id, err := itemIDFromURL(r)
	if err != nil {
		pkghttp.WriteBadRequest(w, "Invalid item ID")
		return
	}

	var req PatchItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	updated, err := h.service.PatchItem(r.Context(), actor.ID, id, models.EvidencePatch{
		Title:    req.Title,
		ScanCode: req.ScanCode,
		Keyword:  req.Keyword,
		Hint:     req.Hint,
		Filename: req.Filename,
		Bonus:    req.Bonus,
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "No fields to update")
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "Item not found")
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteConflict(w, "Scan code already in use")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, itemModelToResponse(updated))
}

// ItemQRCode renders the printable QR PNG for an item's scan URL.
func (h *AdminHandler) ItemQRCode(w http.ResponseWriter, r *http.Request) {
	id, err := itemIDFromURL(r)
	if err != nil {
		pkghttp.WriteBadRequest(w, "Invalid item ID")
		return
	}

	item, err := h.service.GetItem(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Item not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	png, err := qr.ItemPNG(h.baseURL, item.ScanCode)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// ListUsers returns users for the admin console.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit := 100
	offset := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	users, err := h.service.ListUsers(r.Context(), limit, offset)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	resp := make([]*UserResponse, 0, len(users))
	for _, user := range users {
		resp = append(resp, userModelToResponse(user))
	}

	pkghttp.WriteJSON(w, http.StatusOK, resp)
}

// ResetUser wipes the named user's progress, tokens, and balance.
func (h *AdminHandler) ResetUser(w http.ResponseWriter, r *http.Request) {
	actor := auth.UserFromContext(r)
	username := chi.URLParam(r, "username")

	if err := h.service.ResetUser(r.Context(), actor.ID, username); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "User not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteUser removes the named user and all their records.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actor := auth.UserFromContext(r)
	username := chi.URLParam(r, "username")

	if actor.Username == username {
		pkghttp.WriteBadRequest(w, "Cannot delete your own account")
		return
	}

	if err := h.service.DeleteUser(r.Context(), actor.ID, username); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "User not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ToggleAdmin flips the named user's admin flag.
func (h *AdminHandler) ToggleAdmin(w http.ResponseWriter, r *http.Request) {
	actor := auth.UserFromContext(r)
	username := chi.URLParam(r, "username")

	if actor.Username == username {
		pkghttp.WriteBadRequest(w, "Cannot change your own admin status")
		return
	}

	isAdmin, err := h.service.ToggleAdmin(r.Context(), actor.ID, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "User not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, &ToggleAdminResponse{
		Username: username,
		IsAdmin:  isAdmin,
	})
}

// ResetPassword sets a new credential for the named user.
func (h *AdminHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	actor := auth.UserFromContext(r)
	username := chi.URLParam(r, "username")

	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.service.ResetPassword(r.Context(), actor.ID, username, req.Password); err != nil {
		switch {
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Password does not meet requirements")
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "User not found")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
