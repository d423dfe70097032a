package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/config"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/database"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features/all"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features/customers"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/logging"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/notify"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/realtime"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/routes"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/services"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/storage"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	cfg := config.Load()

	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.MigrateShared(); err != nil {
		slog.Error("shared migration failed", "error", err)
		os.Exit(1)
	}

	list := all.Features()
	for _, f := range list {
		if models := f.Models(); len(models) > 0 {
			if err := database.MigrateModels(models); err != nil {
				slog.Error("feature migration failed", "feature", f.ID(), "error", err)
				os.Exit(1)
			}
			slog.Info("feature migrated", "feature", f.ID(), "models", len(models))
		}
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		logging.NewStdoutHandler(cfg.LogLevel, cfg.LogFormat),
		pgLogHandler,
	)))

	// Log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cleanupDone)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Outbound integrations
	ctx := context.Background()
	mailer, err := notify.NewSender(ctx, cfg)
	if err != nil {
		slog.Error("email sender init failed", "provider", cfg.EmailProvider, "error", err)
		os.Exit(1)
	}
	uploader, err := storage.New(ctx, cfg)
	if err != nil {
		slog.Error("storage init failed", "bucket", cfg.S3Bucket, "error", err)
		os.Exit(1)
	}
	if !cfg.StorageEnabled() {
		slog.Warn("S3_BUCKET not set, uploads disabled")
	}

	hub := realtime.NewHub()

	// Services
	settingsService := services.NewSettingsService(database.DB)
	authService := services.NewAuthService(database.DB, cfg, settingsService)
	authService.SetCoachPurge(customers.PurgeCoach)
	profileService := services.NewProfileService(database.DB, uploader)

	deps := &features.Deps{
		DB:       database.DB,
		Cfg:      cfg,
		Hub:      hub,
		Mailer:   mailer,
		Uploader: uploader,
		Settings: settingsService,
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    12 * 1024 * 1024,
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
	app.Use(middleware.Metrics())
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())

	routes.Setup(app, deps, hub, routes.Handlers{
		Auth:     handlers.NewAuthHandler(authService),
		Profile:  handlers.NewProfileHandler(profileService),
		Settings: handlers.NewSettingsHandler(settingsService),
		Health:   handlers.NewHealthHandler(hub),
	}, list)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "features", len(list))
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	close(cleanupDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := database.Close(); err != nil {
		slog.Error("database close error", "error", err)
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
