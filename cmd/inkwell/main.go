// Package main is the entry point for the Inkwell generation server.
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

	"inkwell/internal/ai"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/generator"
	"inkwell/internal/handlers"
	"inkwell/internal/progress"
	"inkwell/internal/router"
	"inkwell/internal/store"
)

func main() {
	// Structured logger — outputs JSON in production, text in development.
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
		"candidates", len(cfg.Candidates),
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

	// Valkey is optional: without it, progress is served from the jobs
	// table instead of live pub/sub.
	var notifier *progress.Publisher
	if cfg.HasValkey() {
		valkeyClient, err := progress.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			slog.Error("failed to connect to valkey", "error", err)
			os.Exit(1)
		}
		defer valkeyClient.Close()
		notifier = progress.NewPublisher(valkeyClient, progress.DefaultSnapshotTTL)
	} else {
		slog.Warn("valkey not configured — live progress disabled")
	}

	// Initialize data stores.
	userStore := store.NewUserStore(db)
	jobStore := store.NewJobStore(db)
	ledgerStore := store.NewLedgerStore(db)

	// Build the provider fallback chain from configuration order.
	var candidates []ai.Provider
	for _, c := range cfg.Candidates {
		pc := ai.ProviderConfig{Name: c.Name, APIKey: c.APIKey, Model: c.Model, BaseURL: c.BaseURL}
		switch c.Kind {
		case "claude":
			candidates = append(candidates, ai.NewClaude(pc))
		default:
			candidates = append(candidates, ai.NewChat(pc))
		}
	}
	gateway := ai.NewGateway(candidates,
		ai.WithCallDelay(cfg.CallDelay),
		ai.WithRetryAttempts(cfg.RetryAttempts),
	)
	slog.Info("generation gateway initialized", "candidates", gateway.Candidates())

	// Moderator is nil without a key, which approves everything.
	moderator := ai.NewModerator(cfg.ModerationKey, cfg.ModerationBaseURL)
	if moderator == nil {
		slog.Warn("moderation not configured — job input is not screened")
	}

	// Orchestrator and its background runner.
	orchestrator := generator.NewOrchestrator(jobStore, ledgerStore, gateway, notifier, logger)
	runner := generator.NewRunner(orchestrator, logger)

	api := handlers.NewAPI(jobStore, ledgerStore, runner, moderator, notifier)

	// Set up the chi router with all middleware and routes.
	r, limiters := router.New(userStore, api)
	defer func() {
		for _, l := range limiters {
			l.Stop()
		}
	}()

	// Generation runs happen off-request, so write timeouts stay modest.
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

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	// In-flight generation runs get a drain window of their own; anything
	// still running is cancelled and refunds its credits on the way out.
	runner.Shutdown(60 * time.Second)

	slog.Info("server stopped gracefully")
}
