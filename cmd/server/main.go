// Package main is the entry point of the MindMate scoring API.
//
// The server exposes the derived views of the student dashboard (academic
// standing, mood trend, daily summary) and the advisor wellness report list.
// It reads student records from PostgreSQL and never writes them; Redis, when
// available, holds the last computed advisor report batch.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/toqeer-ahmed/MindMate/config"
	"github.com/toqeer-ahmed/MindMate/internal/app"
	httpserver "github.com/toqeer-ahmed/MindMate/internal/interface/http"
	"github.com/toqeer-ahmed/MindMate/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION & LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := app.NewLogger(cfg)
	defer func() { _ = log.Sync() }()

	log.Info("starting MindMate API",
		logger.String("version", cfg.App.Version),
		logger.String("timezone", cfg.App.Timezone),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 2. INFRASTRUCTURE & USE CASES
	// ─────────────────────────────────────────────────────────────────────────
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	health := httpserver.NewHealthChecker(cfg.App.Version)
	health.SetTimeout(cfg.Database.QueryTimeout)
	health.AddCheck("postgres", httpserver.PingCheck(a.DB))
	if a.Cache != nil {
		health.AddOptionalCheck("redis", httpserver.PingCheck(a.Cache))
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 3. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	server := httpserver.NewServer(httpserver.ConfigFrom(cfg.App, cfg.HTTP), httpserver.Dependencies{
		AcademicStanding: a.Queries.AcademicStanding,
		MoodTrend:        a.Queries.MoodTrend,
		DailySummary:     a.Queries.DailySummary,
		WellnessReports:  a.Queries.WellnessReports,
		Health:           health,
		Logger:           log,
	})
	errCh := server.StartAsync()

	log.Info("MindMate API is running", logger.String("address", server.Address()))

	// ─────────────────────────────────────────────────────────────────────────
	// 4. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	select {
	case <-ctx.Done():
		log.Info("received shutdown signal")
	case err, ok := <-errCh:
		if ok && err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if server.IsRunning() {
		log.Info("stopping HTTP server", logger.Duration("uptime", server.Uptime()))
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("failed to stop HTTP server gracefully", logger.Err(err))
			return err
		}
	}
	log.Info("shutdown completed successfully")
	return nil
}
