// Command api is the usage relay server: the recipient REST API plus the
// morning and evening notification scheduler.
//
// Usage:
//
//	usage-relay
//	API_PORT=8080 usage-relay

// @title Usage Relay API
// @version 1.0.0
// @description Recipient registry, manual SMS sends, and twice-daily personalized app usage notifications.
// @host localhost:8000
// @BasePath /api/v1
// @schemes http https
// @contact.name Intention Computing
// @license.name MIT
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
	_ "time/tzdata"

	"github.com/coder/quartz"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/albapepper/usage-relay/internal/api"
	"github.com/albapepper/usage-relay/internal/api/handler"
	"github.com/albapepper/usage-relay/internal/cache"
	"github.com/albapepper/usage-relay/internal/config"
	"github.com/albapepper/usage-relay/internal/db"
	"github.com/albapepper/usage-relay/internal/docstore"
	"github.com/albapepper/usage-relay/internal/maintenance"
	"github.com/albapepper/usage-relay/internal/notifications"
	"github.com/albapepper/usage-relay/internal/recipients"
	"github.com/albapepper/usage-relay/internal/schedule"
	"github.com/albapepper/usage-relay/internal/slacklog"
	"github.com/albapepper/usage-relay/internal/sms"
	"github.com/albapepper/usage-relay/internal/usage"

	_ "github.com/albapepper/usage-relay/docs" // swagger docs
)

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Recipient list
	store, err := recipients.Open(ctx, cfg.RecipientsDBPath)
	if err != nil {
		return fmt.Errorf("open recipients: %w", err)
	}
	defer store.Close()
	logger.Info("Recipient store opened", "path", cfg.RecipientsDBPath)

	// Firestore
	docs, err := docstore.New(ctx, cfg.FirestoreProjectID, cfg.FirestoreDatabaseID, logger)
	if err != nil {
		return fmt.Errorf("connect to firestore: %w", err)
	}
	defer docs.Close()
	logger.Info("Firestore connected",
		"project", cfg.FirestoreProjectID,
		"database", cfg.FirestoreDatabaseID)

	// SMS provider
	sender, err := sms.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("create sms sender: %w", err)
	}
	logger.Info("SMS provider configured", "provider", cfg.SMSProvider)

	reporter := slacklog.New(cfg.SlackWebhookURL, cfg.Location, logger)
	if reporter == nil {
		logger.Info("Slack logging disabled (no SLACK_WEBHOOK_URL)")
	}

	// Delivery log (optional)
	var pool *db.Pool
	if cfg.HasDeliveryLog() {
		logger.Info("Connecting to database...")
		pool, err = db.New(ctx, cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer pool.Close()
		logger.Info("Database connected",
			"min_conns", cfg.DBPoolMinConns,
			"max_conns", cfg.DBPoolMaxConns)
	} else {
		logger.Info("Delivery log disabled (no DATABASE_URL)")
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := notifications.NewMetrics(reg)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	aggregator := usage.NewAggregator(docs, cfg.Location)

	deps := notifications.Deps{
		Roster:     docs,
		Usage:      aggregator,
		Sender:     sender,
		Recipients: store,
		Reporter:   reporter,
		Metrics:    metrics,
		Clock:      quartz.NewReal(),
		Logger:     logger,
	}
	if pool != nil {
		deps.Log = notifications.NewStore(pool.Pool)
	}
	notifier := notifications.New(deps, notifications.Options{
		Location:            cfg.Location,
		Ceiling:             cfg.UsageCeiling,
		Role:                cfg.RosterRole,
		RequireActiveWindow: cfg.RosterRequireActiveWindow,
		SendTimeout:         cfg.SMSSendTimeout,
		ReportTimeout:       cfg.ReportTimeout,
	})

	// Scheduler
	scheduler, err := schedule.New(notifier, schedule.Config{
		Location:   cfg.Location,
		Morning:    schedule.Clock{Hour: cfg.MorningHour, Minute: cfg.MorningMinute},
		Evening:    schedule.Clock{Hour: cfg.EveningHour, Minute: cfg.EveningMinute},
		RunTimeout: cfg.RunTimeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}
	scheduler.Start()

	// Initialize cache
	appCache := cache.New(cfg.CacheEnabled)
	logger.Info("Cache initialized", "enabled", cfg.CacheEnabled)

	// Start maintenance tickers (delivery log purge, cache eviction)
	mcfg := maintenance.DefaultConfig()
	mcfg.Retain = cfg.DeliveryRetain
	tasks := maintenance.Tasks{Cache: appCache}
	if pool != nil {
		tasks.Deliveries = pool
	}
	go maintenance.Start(ctx, tasks, mcfg, quartz.NewReal(), logger)

	// Create router
	hdeps := handler.Deps{
		Notifier:   notifier,
		Recipients: store,
		Usage:      aggregator,
		Cache:      appCache,
		Location:   cfg.Location,
	}
	if pool != nil {
		hdeps.DB = pool
		hdeps.Deliveries = notifications.NewStore(pool.Pool)
	}
	router := api.NewRouter(handler.New(hdeps), cfg, reg, logger)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Minute, // manual runs answer after the whole fan-out
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting Usage Relay API",
			"addr", addr,
			"environment", cfg.Environment,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt
	select {
	case <-ctx.Done():
	case err := <-errCh:
		cancel()
		_ = scheduler.Stop(context.Background())
		return err
	}
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	if err := scheduler.Stop(shutdownCtx); err != nil {
		logger.Warn("Scheduled run still in progress at shutdown", "error", err)
	}
	logger.Info("Server stopped")
	return nil
}
