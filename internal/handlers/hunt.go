package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tcollier/fieldhunt/internal/auth"
	"github.com/tcollier/fieldhunt/internal/models"
	pkghttp "github.com/tcollier/fieldhunt/pkg/http"
)

// ProgressService defines the interface the hunt endpoints need
type ProgressService interface {
	RecordFound(ctx context.Context, userID, scanCode string) (*models.EvidenceItem, bool, error)
	AttemptUnlock(ctx context.Context, userID string, itemID int64, keyword string) (models.UnlockOutcome, error)
	ComputeStatus(ctx context.Context, userID string) (*models.StatusSummary, error)
	MarkIntroSeen(ctx context.Context, userID string) error
}

// HuntHandler serves the player-facing progress endpoints.
type HuntHandler struct {
	service ProgressService
}

func NewHuntHandler(service ProgressService) *HuntHandler {
	return &HuntHandler{service: service}
}

type ScanRequest struct {
	Code string `json:"code" validate:"required"`
}

type ScanResponse struct {
	ItemID       int64  `json:"item_id"`
	Title        string `json:"title"`
	Hint         string `json:"hint"`
	Bonus        bool   `json:"bonus"`
	AlreadyFound bool   `json:"already_found"`
}

type UnlockRequest struct {
	ItemID  int64  `json:"item_id" validate:"required"`
	Keyword string `json:"keyword"`
}

type UnlockResponse struct {
	Success bool   `json:"success"`
	Result  string `json:"result"` // "unlocked", "already_unlocked", or "incorrect"
}

type ItemStateResponse struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Hint     string `json:"hint,omitempty"`
	Filename string `json:"filename,omitempty"` // Only exposed once unlocked
	Bonus    bool   `json:"bonus"`
	Found    bool   `json:"found"`
	Unlocked bool   `json:"unlocked"`
}

type StatusResponse struct {
	Items         []ItemStateResponse `json:"items"`
	BonusItems    []ItemStateResponse `json:"bonus_items"`
	FoundCount    int                 `json:"found_count"`
	UnlockedCount int                 `json:"unlocked_count"`
	TotalCount    int                 `json:"total_count"`
	AllSolved     bool                `json:"all_solved"`
	ActiveHint    string              `json:"active_hint,omitempty"`
	Balance       int                 `json:"balance"`
	SeenIntro     bool                `json:"seen_intro"`
}

func itemStateToResponse(st models.ItemState) ItemStateResponse {
	resp := ItemStateResponse{
		ID:       st.Item.ID,
		Title:    st.Item.Title,
		Bonus:    st.Item.Bonus,
		Found:    st.Found,
		Unlocked: st.Unlocked,
	}

	// Hints only help before the item is unlocked; the media asset only
	// exists to the player after.
	if st.Found && !st.Unlocked {
		resp.Hint = st.Item.Hint
	}
	if st.Unlocked {
		resp.Filename = st.Item.Filename
	}

	return resp
}

// Scan records that the current user found the item behind a scan code.
// Scanning the same code twice is a success, not an error.
func (h *HuntHandler) Scan(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r)

	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	item, alreadyFound, err := h.service.RecordFound(r.Context(), user.ID, req.Code)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Unknown scan code")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, &ScanResponse{
		ItemID:       item.ID,
		Title:        item.Title,
		Hint:         item.Hint,
		Bonus:        item.Bonus,
		AlreadyFound: alreadyFound,
	})
}

// Unlock checks a submitted keyword. A wrong keyword is a 200 with
// success=false so the client can keep the player on the same screen.
func (h *HuntHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r)

	var req UnlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	outcome, err := h.service.AttemptUnlock(r.Context(), user.ID, req.ItemID, req.Keyword)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Unknown item")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	resp := &UnlockResponse{}
	switch outcome {
	case models.Unlocked:
		resp.Success = true
		resp.Result = "unlocked"
	case models.AlreadyUnlocked:
		resp.Success = true
		resp.Result = "already_unlocked"
	default:
		resp.Result = "incorrect"
	}

	pkghttp.WriteJSON(w, http.StatusOK, resp)
}

// Status returns the caller's full progress view.
func (h *HuntHandler) Status(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r)

	summary, err := h.service.ComputeStatus(r.Context(), user.ID)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	resp := &StatusResponse{
		Items:         make([]ItemStateResponse, 0, len(summary.Main)),
		BonusItems:    make([]ItemStateResponse, 0, len(summary.Bonus)),
		FoundCount:    summary.FoundCount,
		UnlockedCount: summary.UnlockedCount,
		TotalCount:    summary.TotalCount,
		AllSolved:     summary.AllSolved,
		ActiveHint:    summary.ActiveHint,
		Balance:       summary.Balance,
		SeenIntro:     summary.SeenIntro,
	}
	for _, st := range summary.Main {
		resp.Items = append(resp.Items, itemStateToResponse(st))
	}
	for _, st := range summary.Bonus {
		resp.BonusItems = append(resp.BonusItems, itemStateToResponse(st))
	}

	pkghttp.WriteJSON(w, http.StatusOK, resp)
}

// MarkIntroSeen records that the caller has seen the intro screen.
func (h *HuntHandler) MarkIntroSeen(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r)

	if err := h.service.MarkIntroSeen(r.Context(), user.ID); err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
