package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tcollier/fieldhunt/internal/models"
)

type stubResolver struct {
	userID string
	err    error
}

func (s *stubResolver) Resolve(ctx context.Context, token string) (string, error) {
	return s.userID, s.err
}

type stubLoader struct {
	user *models.User
	err  error
}

func (s *stubLoader) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.user, s.err
}

func TestSessionMiddleware_ValidCookieAttachesUser(t *testing.T) {
	user := &models.User{ID: "user123", Username: "player"}
	mw := SessionMiddleware(&stubResolver{userID: "user123"}, &stubLoader{user: user})

	var got *models.User
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = UserFromContext(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "tok-1"})

	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, user, got)
}

func TestSessionMiddleware_InvalidTokenProceedsAnonymous(t *testing.T) {
	mw := SessionMiddleware(&stubResolver{err: models.ErrUnauthorized}, &stubLoader{})

	var got *models.User
	var called bool
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		got = UserFromContext(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "stale"})

	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.True(t, called)
	assert.Nil(t, got)
}

func TestRequireUser_RejectsAnonymous(t *testing.T) {
	handler := RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("anonymous request must not reach the handler")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdmin_RejectsNonAdmin(t *testing.T) {
	handler := RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("non-admin request must not reach the handler")
	}))

	req := WithUser(httptest.NewRequest(http.MethodPost, "/cashout/redeem", nil),
		&models.User{ID: "user123", Username: "player"})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAdmin_AllowsAdmin(t *testing.T) {
	var called bool
	handler := RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := WithUser(httptest.NewRequest(http.MethodPost, "/cashout/redeem", nil),
		&models.User{ID: "admin123", Username: "admin", IsAdmin: true})

	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.True(t, called)
}
