package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/tcollier/fieldhunt/internal/auth"
	"github.com/tcollier/fieldhunt/internal/handlers"
	"github.com/tcollier/fieldhunt/internal/middleware"
	"github.com/tcollier/fieldhunt/internal/repositories"
	"github.com/tcollier/fieldhunt/internal/services"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	huntHandler *handlers.HuntHandler,
	cashoutHandler *handlers.CashoutHandler,
	adminHandler *handlers.AdminHandler,
	sessionService *services.SessionService,
	userRepo *repositories.UserRepository,
) {
	// Rate limiting config for credential endpoints
	rateLimitConfig := middleware.DefaultAuthRateLimit()

	// Every route sees the session cookie; the Require* guards below decide
	// who gets in.
	router.Use(auth.SessionMiddleware(sessionService, userRepo))

	// Public routes - no authentication required
	router.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/auth/register", authHandler.Register)
	router.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/auth/login", authHandler.Login)
	router.Post("/auth/logout", authHandler.Logout)

	// Player routes - authentication required
	router.Group(func(r chi.Router) {
		r.Use(auth.RequireUser)

		r.Get("/status", huntHandler.Status)
		r.Post("/scan", huntHandler.Scan)
		r.Post("/unlock", huntHandler.Unlock)
		r.Post("/intro/seen", huntHandler.MarkIntroSeen)
		r.Post("/cashout", cashoutHandler.GenerateToken)

		// Admin-only routes
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin)

			r.Post("/cashout/redeem", cashoutHandler.Redeem)

			r.Get("/admin/items", adminHandler.ListItems)
			r.Post("/admin/items", adminHandler.CreateItem)
			r.Patch("/admin/items/{id}", adminHandler.PatchItem)
			r.Get("/admin/items/{id}/qr", adminHandler.ItemQRCode)

			r.Get("/admin/users", adminHandler.ListUsers)
			r.Post("/admin/users/{username}/reset", adminHandler.ResetUser)
			r.Post("/admin/users/{username}/toggle-admin", adminHandler.ToggleAdmin)
			r.Put("/admin/users/{username}/password", adminHandler.ResetPassword)
			r.Delete("/admin/users/{username}", adminHandler.DeleteUser)
		})
	})
}
