// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the campus directory server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campusdir/internal/cache"
	"campusdir/internal/config"
	"campusdir/internal/database"
	"campusdir/internal/directory"
	"campusdir/internal/handlers"
	"campusdir/internal/mailer"
	"campusdir/internal/middleware"
	"campusdir/internal/router"
	"campusdir/internal/session"
	"campusdir/internal/store"
)

func main() {
	// Structured logger — outputs to stdout for container log collection.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (Redis-compatible cache + session store).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// In non-development environments, mark cookies as Secure (HTTPS-only).
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)

	// Initialize data stores.
	userStore := store.NewUserStore(db)
	categoryStore := store.NewCategoryStore(db)
	serviceStore := store.NewServiceStore(db)
	submissionStore := store.NewSubmissionStore(db)
	auditStore := store.NewAuditLogStore(db)

	// Directory write validation runs against the live stores.
	validator := directory.NewValidator(categoryStore, serviceStore)

	// Valkey-backed response cache and submission dedupe.
	snapshots := cache.NewSnapshotCache(valkeyClient, cache.DefaultSnapshotTTL)
	dedupe := cache.NewSubmissionDedupe(valkeyClient, cache.DefaultDedupeWindow)

	// Outbound mail for submission notifications (optional).
	var notifier mailer.Notifier = mailer.Noop{}
	if cfg.MailAPIKey != "" {
		notifier = mailer.New(cfg.MailAPIKey, cfg.MailFrom)
		slog.Info("mail notifications enabled", "from", cfg.MailFrom, "to", cfg.MailNotifyTo)
	} else {
		slog.Warn("mail API key not configured — submission notifications disabled")
	}

	// Create handler groups with their dependencies.
	adminHandlers := handlers.NewAdmin(categoryStore, serviceStore, submissionStore, userStore, auditStore, validator, snapshots)
	authHandlers := handlers.NewAuth(userStore, sessionStore)
	publicHandlers := handlers.NewPublic(categoryStore, serviceStore, snapshots)
	submissionHandlers := handlers.NewSubmissions(submissionStore, categoryStore, dedupe, notifier, cfg.MailNotifyTo)

	// Throttle public suggestion intake per client IP.
	submitLimiter := middleware.NewRateLimiter(10, time.Minute)
	defer submitLimiter.Stop()

	// Set up the Chi router with all middleware and routes.
	r := router.New(router.Options{
		Sessions:      sessionStore,
		Admin:         adminHandlers,
		Auth:          authHandlers,
		Public:        publicHandlers,
		Submissions:   submissionHandlers,
		SubmitLimiter: submitLimiter,
		SecureCookies: secureCookies,
	})

	// Create the HTTP server with sensible timeouts.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
