package main

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/recipebox/recipes/api/swagger"
	"github.com/recipebox/recipes/pkg/recipes/config"
	"github.com/recipebox/recipes/pkg/recipes/database"
	"github.com/recipebox/recipes/pkg/recipes/logging"
	"github.com/recipebox/recipes/pkg/recipes/models"
	"github.com/recipebox/recipes/pkg/recipes/server"
	"github.com/recipebox/recipes/pkg/recipes/store"
)

// @title Recipes API
// @version 1.0
// @description Personal recipe catalog with owner-scoped tags, ingredients and recipes.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey TokenAuth
// @in header
// @name Authorization
// @description API token. Format: "Token {token}"

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("info").Fatal("failed to load config", "error", err)
	}

	logger := logging.New(cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	if u, err := url.Parse(cfg.BaseURL); err == nil && u.Host != "" {
		swagger.SwaggerInfo.Host = u.Host
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database
	if err := database.Connect(cfg.Database.Driver, cfg.Database.DSN); err != nil {
		logger.Fatal("failed to connect to database", "error", err)
	}
	sqlDB, err := database.GetDB().DB()
	if err != nil {
		logger.Fatal("failed to get database handle", "error", err)
	}
	defer sqlDB.Close()

	logger.Info("waiting for database", "driver", cfg.Database.Driver)
	if err := database.WaitForDB(ctx, sqlDB, cfg.Database.WaitAttempts, cfg.Database.WaitInterval); err != nil {
		logger.Fatal("database not ready", "error", err)
	}
	logger.Info("database available")

	// Run auto-migrations
	if err := models.AutoMigrate(database.GetDB()); err != nil {
		logger.Fatal("failed to run migrations", "error", err)
	}
	logger.Info("database migrations completed")

	s := store.New(database.GetDB())

	if cfg.Admin.Enabled() {
		if err := ensureSuperuser(ctx, s, cfg.Admin, logger); err != nil {
			logger.Fatal("failed to ensure superuser", "error", err)
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.NewRouter(s, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting recipes server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

// ensureSuperuser creates the configured superuser unless the email is
// already registered.
func ensureSuperuser(ctx context.Context, s *store.Store, admin config.Admin, logger *logging.Logger) error {
	user, err := s.Users.CreateSuperuser(ctx, admin.Email, admin.Password, admin.Name)
	if errors.Is(err, store.ErrDuplicateEmail) {
		logger.Info("superuser already exists", "email", store.NormalizeEmail(admin.Email))
		return nil
	}
	if err != nil {
		return err
	}

	logger.Info("created superuser", "email", user.Email)
	return nil
}
