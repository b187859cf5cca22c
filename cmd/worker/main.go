// Package main is the entry point of the MindMate background worker.
//
// The worker recomputes the advisor wellness report batch on a schedule
// (nightly by default), caches it in Redis and logs every student whose
// risk level changed since the previous run. With the scheduler disabled it
// runs the recomputation once and exits.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/toqeer-ahmed/MindMate/config"
	"github.com/toqeer-ahmed/MindMate/internal/app"
	"github.com/toqeer-ahmed/MindMate/internal/infrastructure/scheduler"
	"github.com/toqeer-ahmed/MindMate/internal/infrastructure/scheduler/jobs"
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

	log := app.NewLogger(cfg).With(logger.Component("worker"))
	defer func() { _ = log.Sync() }()

	log.Info("starting MindMate worker", logger.String("timezone", cfg.App.Timezone))

	// ─────────────────────────────────────────────────────────────────────────
	// 2. INFRASTRUCTURE & USE CASES
	// ─────────────────────────────────────────────────────────────────────────
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	// ─────────────────────────────────────────────────────────────────────────
	// 3. JOBS
	// ─────────────────────────────────────────────────────────────────────────
	var (
		store  jobs.BatchStore
		locker jobs.Locker
	)
	if a.Reports != nil {
		store = a.Reports
		locker = a.Cache
	} else {
		log.Warn("redis unavailable: batches are not cached and runs are not serialized across replicas")
	}

	recompute := jobs.NewRecomputeRiskJob(a.Queries.WellnessReports, store, locker, log, jobs.RecomputeRiskConfig{
		WindowDays: cfg.Engine.ReportWindowDays,
		LockTTL:    cfg.Scheduler.JobTimeout,
	})

	sched := scheduler.New(scheduler.Config{
		Logger:     log,
		Timezone:   cfg.App.Location,
		JobTimeout: cfg.Scheduler.JobTimeout,
	})

	schedule, err := recomputeSchedule(cfg)
	if err != nil {
		return err
	}
	if err := sched.Register(recompute, schedule); err != nil {
		return fmt.Errorf("failed to register %s: %w", recompute.Name(), err)
	}

	if !cfg.Scheduler.Enabled {
		log.Info("scheduler disabled, running recomputation once")
		_, err := sched.RunNow(ctx, recompute.Name())
		logRuns(log, sched, recompute)
		return err
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. SCHEDULER
	// ─────────────────────────────────────────────────────────────────────────
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	for _, job := range sched.ListJobs() {
		log.Info("job registered",
			logger.String("job", job.Name),
			logger.String("schedule", job.Schedule),
			logger.Time("next_run", job.NextRun),
		)
	}
	log.Info("MindMate worker is running", logger.String("schedule", schedule.String()))

	if cfg.Scheduler.RunOnStart {
		if _, err := sched.RunNow(ctx, recompute.Name()); err != nil {
			log.Error("initial recomputation failed", logger.Err(err))
		}
	}

	<-ctx.Done()
	log.Info("received shutdown signal")

	if sched.IsRunning() {
		if err := sched.Stop(); err != nil {
			log.Warn("failed to stop scheduler", logger.Err(err))
		}
	}
	logRuns(log, sched, recompute)
	log.Info("shutdown completed successfully")
	return nil
}

// historyLimit caps the runs echoed at exit.
const historyLimit = 10

// logRuns writes the recent run history and the outcome of the last
// recomputation.
func logRuns(log *logger.Logger, sched *scheduler.Scheduler, recompute *jobs.RecomputeRiskJob) {
	for _, r := range sched.History(historyLimit) {
		fields := []logger.Field{
			logger.String("job", r.JobName),
			logger.Time("started_at", r.StartedAt),
			logger.Duration("duration", r.Duration),
			logger.Bool("success", r.Success),
			logger.Bool("skipped", r.Skipped),
			logger.Bool("manual", r.Manual),
		}
		if r.Error != nil {
			fields = append(fields, logger.Err(r.Error))
		}
		log.Info("job run", fields...)
	}

	stats := recompute.LastStats()
	if stats == nil {
		return
	}
	log.Info("last recomputation",
		logger.RunID(stats.RunID),
		logger.Int("students", stats.Students),
		logger.Int("failures", stats.Failures),
		logger.Int("changes", stats.Changes),
		logger.Int("escalated", stats.Escalated),
		logger.Bool("locked_out", stats.LockedOut),
	)
}

// recomputeSchedule prefers a fixed interval over the cron expression.
func recomputeSchedule(cfg *config.Config) (scheduler.Schedule, error) {
	if cfg.Scheduler.RecomputeInterval > 0 {
		return scheduler.NewIntervalSchedule(cfg.Scheduler.RecomputeInterval), nil
	}
	expr := strings.TrimSpace(cfg.Scheduler.RecomputeCron)
	if expr == "" {
		expr = scheduler.DailyAt2AM
	}
	s, err := scheduler.ParseCron(expr, cfg.App.Location)
	if err != nil {
		return nil, fmt.Errorf("SCHEDULER_RECOMPUTE_CRON: %w", err)
	}
	return s, nil
}
