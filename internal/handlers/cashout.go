package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/tcollier/fieldhunt/internal/auth"
	"github.com/tcollier/fieldhunt/internal/models"
	"github.com/tcollier/fieldhunt/internal/qr"
	pkghttp "github.com/tcollier/fieldhunt/pkg/http"
)

// CashoutService defines the interface for the redemption handshake
type CashoutService interface {
	GenerateToken(ctx context.Context, userID string) (*models.CashoutToken, string, error)
	Redeem(ctx context.Context, token, adminID string, amount int) (int, error)
}

// CashoutHandler serves both sides of the cash-out handshake: token minting
// for players and redemption for admins.
type CashoutHandler struct {
	service CashoutService
}

func NewCashoutHandler(service CashoutService) *CashoutHandler {
	return &CashoutHandler{service: service}
}

type GenerateTokenResponse struct {
	Token      string    `json:"token"`
	ExpiresAt  time.Time `json:"expires_at"`
	ConfirmURL string    `json:"confirm_url"`
	QRDataURL  string    `json:"qr_data_url"`
}

type RedeemRequest struct {
	Token  string `json:"token" validate:"required"`
	Amount int    `json:"amount" validate:"gte=0"`
}

type RedeemResponse struct {
	Success    bool `json:"success"`
	NewBalance int  `json:"new_balance"`
}

// GenerateToken mints a short-lived single-use cash-out token for the
// caller and returns it alongside a QR code the admin can scan.
func (h *CashoutHandler) GenerateToken(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r)

	token, confirmURL, err := h.service.GenerateToken(r.Context(), user.ID)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	dataURL, err := qr.DataURL(confirmURL)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, &GenerateTokenResponse{
		Token:      token.Token,
		ExpiresAt:  token.ExpiresAt,
		ConfirmURL: confirmURL,
		QRDataURL:  dataURL,
	})
}

// Redeem burns a cash-out token and debits the owner's balance. Admin only.
// Each denial reason gets its own error code so the admin screen can tell
// the player why.
func (h *CashoutHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	admin := auth.UserFromContext(r)

	var req RedeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	newBalance, err := h.service.Redeem(r.Context(), req.Token, admin.ID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "Unknown cash-out token")
		case errors.Is(err, models.ErrTokenExpired):
			pkghttp.WriteError(w, http.StatusConflict, "token_expired", "Cash-out token has expired")
		case errors.Is(err, models.ErrTokenUsed):
			pkghttp.WriteError(w, http.StatusConflict, "token_used", "Cash-out token was already redeemed")
		case errors.Is(err, models.ErrInvalidAmount):
			pkghttp.WriteError(w, http.StatusBadRequest, "insufficient_balance", "Amount exceeds the player's balance")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, &RedeemResponse{
		Success:    true,
		NewBalance: newBalance,
	})
}
