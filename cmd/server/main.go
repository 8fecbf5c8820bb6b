package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ebarcelosf/active-learn-hub-backup/internal/auth"
	"github.com/ebarcelosf/active-learn-hub-backup/internal/config"
	"github.com/ebarcelosf/active-learn-hub-backup/internal/database"
	"github.com/ebarcelosf/active-learn-hub-backup/internal/handlers"
	"github.com/ebarcelosf/active-learn-hub-backup/internal/kv"
	"github.com/ebarcelosf/active-learn-hub-backup/internal/logging"
	"github.com/ebarcelosf/active-learn-hub-backup/internal/middleware"
	"github.com/ebarcelosf/active-learn-hub-backup/internal/migration"
	"github.com/ebarcelosf/active-learn-hub-backup/internal/routes"
	"github.com/ebarcelosf/active-learn-hub-backup/internal/storage"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/gorm"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	// The key-value file store backs local mode and, in remote mode, the
	// persisted session token plus the migration source data.
	store, err := kv.OpenSQLite(cfg.DataDir)
	if err != nil {
		slog.Error("failed to open local store", "dir", cfg.DataDir, "error", err)
		os.Exit(1)
	}

	var (
		db           *gorm.DB
		svc          storage.Service
		sessions     *auth.SessionContext
		migrator     *migration.Migrator
		pgLogHandler *logging.PGHandler
		cleanupDone  chan struct{}
	)

	if cfg.Remote() {
		if cfg.JWTSecret == "" {
			slog.Error("JWT_SECRET environment variable is required in remote mode")
			os.Exit(1)
		}

		db, err = database.Connect(cfg)
		if err != nil {
			slog.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		if err := database.Migrate(db); err != nil {
			slog.Error("database migration failed", "error", err)
			os.Exit(1)
		}

		// PostgreSQL log handler (ERROR+ async batch)
		pgLogHandler = logging.NewPGHandler(db)
		slog.SetDefault(slog.New(logging.NewMultiHandler(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
			pgLogHandler,
		)))

		// Log cleanup (configurable retention)
		cleanupDone = make(chan struct{})
		logging.StartCleanup(db, cfg.LogRetention, cleanupDone)

		authService := auth.NewService(db, cfg)
		sessions = auth.NewSessionContext(authService, store)
		sessions.Restore()

		remote := storage.NewRemote(db, authService, sessions)
		svc = remote
		migrator = migration.New(store, storage.NewLocal(store), remote, sessions)
	} else {
		svc, err = storage.New(cfg, store, storage.RemoteDeps{})
		if err != nil {
			slog.Error("storage setup failed", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("backend selected", "mode", string(cfg.Mode))

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	// Routes
	h := routes.Handlers{
		Auth:       handlers.NewAuthHandler(svc, sessions),
		Health:     handlers.NewHealthHandler(cfg, db),
		Projects:   handlers.NewProjectHandler(svc),
		Activities: handlers.NewActivityHandler(svc),
		Resources:  handlers.NewResourceHandler(svc),
		Badges:     handlers.NewBadgeHandler(svc),
		Settings:   handlers.NewSettingsHandler(svc),
	}
	if migrator != nil {
		h.Migration = handlers.NewMigrationHandler(migrator)
	}
	routes.Setup(app, cfg, h)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if cleanupDone != nil {
		close(cleanupDone)
	}
	if pgLogHandler != nil {
		pgLogHandler.Stop()
	}
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				slog.Error("database close error", "error", err)
			}
		}
	}
	if err := store.Close(); err != nil {
		slog.Error("local store close error", "error", err)
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
