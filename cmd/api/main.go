package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/tcollier/fieldhunt/internal/auth"
	"github.com/tcollier/fieldhunt/internal/background"
	"github.com/tcollier/fieldhunt/internal/config"
	"github.com/tcollier/fieldhunt/internal/database"
	"github.com/tcollier/fieldhunt/internal/handlers"
	middlewareCustom "github.com/tcollier/fieldhunt/internal/middleware"
	"github.com/tcollier/fieldhunt/internal/models"
	"github.com/tcollier/fieldhunt/internal/repositories"
	"github.com/tcollier/fieldhunt/internal/routes"
	"github.com/tcollier/fieldhunt/internal/services"
	pkgauth "github.com/tcollier/fieldhunt/pkg/auth"
	pkglogger "github.com/tcollier/fieldhunt/pkg/logger"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	evidenceRepo := repositories.NewEvidenceRepository(db)
	progressRepo := repositories.NewProgressRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	cashoutRepo := repositories.NewCashoutRepository(db)

	// Initialize cleanup manager
	cleanupManager := background.NewCleanupManager(sessionRepo, cashoutRepo, logger, cfg.Hunt.CleanupInterval)

	auditLogger := pkglogger.NewAuditLogger(logger)

	// Initialize services
	sessionService := services.NewSessionService(sessionRepo, cfg.Hunt.SessionTTL, logger)
	authService := services.NewAuthService(userRepo, sessionService, logger, auditLogger)
	progressService := services.NewProgressService(evidenceRepo, progressRepo, userRepo, logger)
	cashoutService := services.NewCashoutService(cashoutRepo, cfg.Hunt.CashoutTokenTTL, cfg.Server.BaseURL, logger, auditLogger)
	adminService := services.NewAdminService(userRepo, evidenceRepo, progressRepo, logger, auditLogger)

	// Initialize handlers
	cookieConfig := auth.CookieConfig{Secure: cfg.Server.Env == "production"}
	authHandler := handlers.NewAuthHandler(authService, cookieConfig)
	huntHandler := handlers.NewHuntHandler(progressService)
	cashoutHandler := handlers.NewCashoutHandler(cashoutService)
	adminHandler := handlers.NewAdminHandler(adminService, cfg.Server.BaseURL)

	// Bootstrap first admin user if configured
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := ensureAdminUser(ctx, userRepo, logger); err != nil {
		logger.Error("failed to ensure admin user", slog.Any("error", err))
	}
	cancel()

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.RequestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Register routes
	routes.RegisterRoutes(router, authHandler, huntHandler, cashoutHandler, adminHandler, sessionService, userRepo)

	// Health check with database
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","database":"up"}`))
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start cleanup task
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	go cleanupManager.Start(cleanupCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()
	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

// ensureAdminUser creates the first admin user if ADMIN_USERNAME and ADMIN_PASSWORD are set
func ensureAdminUser(ctx context.Context, userRepo *repositories.UserRepository, logger *slog.Logger) error {
	adminUsername := os.Getenv("ADMIN_USERNAME")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminUsername == "" || adminPassword == "" {
		logger.Info("no ADMIN_USERNAME or ADMIN_PASSWORD set, skipping admin user creation")
		return nil
	}

	// Check if admin already exists
	_, err := userRepo.GetByUsername(ctx, adminUsername)
	if err == nil {
		logger.Info("admin user already exists")
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("failed to check if admin exists: %w", err)
	}

	hashedPassword, err := pkgauth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin, err := userRepo.Create(ctx, &models.User{
		Username:     adminUsername,
		PasswordHash: hashedPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	if err := userRepo.SetAdmin(ctx, admin.ID, true); err != nil {
		return fmt.Errorf("failed to promote admin user: %w", err)
	}

	logger.Info("admin user created successfully")
	return nil
}
