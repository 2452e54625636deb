package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tcollier/fieldhunt/internal/auth"
	"github.com/tcollier/fieldhunt/internal/models"
	pkghttp "github.com/tcollier/fieldhunt/pkg/http"
)

// MockCashoutService implements CashoutService for testing
type MockCashoutService struct {
	GenerateTokenFunc func(ctx context.Context, userID string) (*models.CashoutToken, string, error)
	RedeemFunc        func(ctx context.Context, token, adminID string, amount int) (int, error)
}

func (m *MockCashoutService) GenerateToken(ctx context.Context, userID string) (*models.CashoutToken, string, error) {
	if m.GenerateTokenFunc != nil {
		return m.GenerateTokenFunc(ctx, userID)
	}
	return nil, "", models.ErrInternalServer
}

func (m *MockCashoutService) Redeem(ctx context.Context, token, adminID string, amount int) (int, error) {
	if m.RedeemFunc != nil {
		return m.RedeemFunc(ctx, token, adminID, amount)
	}
	return 0, models.ErrNotFound
}

func adminRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	return auth.WithUser(req, &models.User{ID: "admin123", Username: "admin", IsAdmin: true})
}

func TestCashoutHandler_GenerateToken(t *testing.T) {
	expires := time.Now().Add(5 * time.Minute)
	svc := &MockCashoutService{
		GenerateTokenFunc: func(ctx context.Context, userID string) (*models.CashoutToken, string, error) {
			assert.Equal(t, "user123", userID)
			return &models.CashoutToken{Token: "tok-1", UserID: userID, ExpiresAt: expires},
				"http://localhost:8080/cashout/confirm?token=tok-1", nil
		},
	}

	handler := NewCashoutHandler(svc)
	rec := httptest.NewRecorder()

	handler.GenerateToken(rec, authedRequest(http.MethodPost, "/cashout", ""))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp GenerateTokenResponse
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "tok-1", resp.Token)
	assert.Contains(t, resp.ConfirmURL, "token=tok-1")
	assert.True(t, strings.HasPrefix(resp.QRDataURL, "data:image/png;base64,"))
}

func TestCashoutHandler_Redeem_Success(t *testing.T) {
	svc := &MockCashoutService{
		RedeemFunc: func(ctx context.Context, token, adminID string, amount int) (int, error) {
			assert.Equal(t, "tok-1", token)
			assert.Equal(t, "admin123", adminID)
			assert.Equal(t, 3, amount)
			return 7, nil
		},
	}

	handler := NewCashoutHandler(svc)
	rec := httptest.NewRecorder()

	handler.Redeem(rec, adminRequest(http.MethodPost, "/cashout/redeem", `{"token":"tok-1","amount":3}`))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp RedeemResponse
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 7, resp.NewBalance)
}

func TestCashoutHandler_Redeem_DenialCodes(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{"unknown token", models.ErrNotFound, http.StatusNotFound, "not_found"},
		{"expired token", models.ErrTokenExpired, http.StatusConflict, "token_expired"},
		{"used token", models.ErrTokenUsed, http.StatusConflict, "token_used"},
		{"amount too large", models.ErrInvalidAmount, http.StatusBadRequest, "insufficient_balance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockCashoutService{
				RedeemFunc: func(ctx context.Context, token, adminID string, amount int) (int, error) {
					return 0, tt.serviceErr
				},
			}

			handler := NewCashoutHandler(svc)
			rec := httptest.NewRecorder()

			handler.Redeem(rec, adminRequest(http.MethodPost, "/cashout/redeem", `{"token":"tok-1","amount":3}`))

			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp pkghttp.ErrorResponse
			assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tt.wantCode, resp.Error)
		})
	}
}

func TestCashoutHandler_Redeem_NegativeAmountRejected(t *testing.T) {
	svc := &MockCashoutService{
		RedeemFunc: func(ctx context.Context, token, adminID string, amount int) (int, error) {
			t.Fatal("negative amount must fail validation before the service")
			return 0, nil
		},
	}

	handler := NewCashoutHandler(svc)
	rec := httptest.NewRecorder()

	handler.Redeem(rec, adminRequest(http.MethodPost, "/cashout/redeem", `{"token":"tok-1","amount":-1}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCashoutHandler_Redeem_MissingToken(t *testing.T) {
	handler := NewCashoutHandler(&MockCashoutService{})
	rec := httptest.NewRecorder()

	handler.Redeem(rec, adminRequest(http.MethodPost, "/cashout/redeem", `{"amount":3}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
