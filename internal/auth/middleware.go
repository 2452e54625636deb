package auth

import (
	"context"
	"net/http"

	"github.com/tcollier/fieldhunt/internal/models"
	pkghttp "github.com/tcollier/fieldhunt/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

const principalContextKey contextKey = "principal"

// SessionResolver is implemented by services.SessionService.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

// UserLoader fetches the current user record so privilege checks always see
// the live admin flag, not a stale one captured at login.
type UserLoader interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// SessionMiddleware resolves the session cookie once per request and stores
// the user in the context. Requests without a valid session proceed as
// anonymous; the Require* guards decide whether that is acceptable.
func SessionMiddleware(sessions SessionResolver, users UserLoader) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := GetSessionToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := sessions.Resolve(r.Context(), token)
			if err != nil {
				// Absent or expired token: anonymous, not an error.
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.GetByID(r.Context(), userID)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), principalContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser rejects anonymous requests. Must be used after
// SessionMiddleware.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFromContext(r) == nil {
			pkghttp.WriteUnauthorized(w, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects anonymous and non-admin requests. The denial does
// not reveal whether the target resource exists.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := UserFromContext(r)
		if user == nil {
			pkghttp.WriteUnauthorized(w, "authentication required")
			return
		}
		if !user.IsAdmin {
			pkghttp.WriteForbidden(w, "insufficient permissions")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserFromContext extracts the authenticated user from the request
// context, or nil for anonymous requests.
func UserFromContext(r *http.Request) *models.User {
	user, ok := r.Context().Value(principalContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// WithUser injects a user into a request context. Test helper.
func WithUser(r *http.Request, user *models.User) *http.Request {
	ctx := context.WithValue(r.Context(), principalContextKey, user)
	return r.WithContext(ctx)
}
