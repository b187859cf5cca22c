// Package jobs contains the scheduled jobs of MindMate.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/toqeer-ahmed/MindMate/internal/domain/risk"
	"github.com/toqeer-ahmed/MindMate/internal/infrastructure/persistence/redis"
	"github.com/toqeer-ahmed/MindMate/pkg/logger"
	"github.com/toqeer-ahmed/MindMate/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECOMPUTE RISK JOB
// Rebuilds the advisor batch ahead of the portal's first visit and logs every
// student whose risk level moved since the previous run.
// ══════════════════════════════════════════════════════════════════════════════

// ReportComputer computes a batch over the whole roster.
type ReportComputer interface {
	Compute(ctx context.Context, windowDays int) (risk.Batch, error)
}

// BatchStore keeps the latest batch.
type BatchStore interface {
	Previous(ctx context.Context, windowDays int) (risk.Batch, bool, error)
	Store(ctx context.Context, b risk.Batch) error
}

// Locker serializes runs across worker replicas.
type Locker interface {
	Lock(ctx context.Context, resource, token string, ttl time.Duration) (func(context.Context) error, error)
}

// RecomputeRiskConfig configures the job.
type RecomputeRiskConfig struct {
	WindowDays int
	// LockTTL should exceed the longest expected run.
	LockTTL time.Duration
}

// RecomputeStats describes the last completed run.
type RecomputeStats struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration
	Students  int
	Failures  int
	Changes   int
	Escalated int
	Counts    map[risk.Level]int
	LockedOut bool
}

// RecomputeRiskJob implements scheduler.Job.
type RecomputeRiskJob struct {
	reports ReportComputer
	store   BatchStore
	locker  Locker
	log     *logger.Logger
	config  RecomputeRiskConfig
	retrier *retry.Retrier

	last atomic.Pointer[RecomputeStats]
}

// NewRecomputeRiskJob creates the job. store and locker may be nil.
func NewRecomputeRiskJob(reports ReportComputer, store BatchStore, locker Locker, log *logger.Logger, config RecomputeRiskConfig) *RecomputeRiskJob {
	if log == nil {
		log = logger.Nop()
	}
	if config.WindowDays <= 0 {
		config.WindowDays = 7
	}
	if config.LockTTL <= 0 {
		config.LockTTL = 15 * time.Minute
	}
	return &RecomputeRiskJob{
		reports: reports,
		store:   store,
		locker:  locker,
		log:     log.With(logger.Component("recompute_risk")),
		config:  config,
		retrier: retry.CacheRetrier(),
	}
}

// Name returns the job name.
func (j *RecomputeRiskJob) Name() string {
	return "recompute_risk"
}

// Description returns a human-readable description.
func (j *RecomputeRiskJob) Description() string {
	return fmt.Sprintf("Recomputes %d-day wellness risk for every student and caches the advisor batch", j.config.WindowDays)
}

// LastStats returns the stats of the last run, or nil.
func (j *RecomputeRiskJob) LastStats() *RecomputeStats {
	return j.last.Load()
}

// Run executes the job. Another replica holding the lock is not an error.
func (j *RecomputeRiskJob) Run(ctx context.Context) error {
	started := time.Now()

	if j.locker != nil {
		release, err := j.locker.Lock(ctx, j.Name(), uuid.NewString(), j.config.LockTTL)
		switch {
		case errors.Is(err, redis.ErrLockHeld):
			j.log.Info("another worker is recomputing, skipping")
			j.last.Store(&RecomputeStats{StartedAt: started, LockedOut: true})
			return nil
		case err != nil:
			// Recomputing twice is harmless; the batch is idempotent.
			j.log.Warn("lock unavailable, running unlocked", logger.Err(err))
		default:
			defer func() {
				if err := release(context.WithoutCancel(ctx)); err != nil {
					j.log.Warn("failed to release lock", logger.Err(err))
				}
			}()
		}
	}

	prev, hasPrev := j.previous(ctx)

	batch, err := j.reports.Compute(ctx, j.config.WindowDays)
	if err != nil {
		return fmt.Errorf("compute reports: %w", err)
	}

	if j.store != nil {
		err := j.retrier.Do(ctx, func(ctx context.Context) error {
			return j.store.Store(ctx, batch)
		})
		if err != nil {
			return fmt.Errorf("store reports: %w", err)
		}
	}

	stats := &RecomputeStats{
		RunID:     batch.RunID,
		StartedAt: started,
		Students:  len(batch.Reports),
		Failures:  len(batch.Failures),
		Counts:    batch.Counts(),
	}
	if hasPrev {
		for _, c := range risk.Diff(prev, batch) {
			stats.Changes++
			fields := []logger.Field{
				logger.RunID(batch.RunID),
				logger.StudentID(c.StudentID),
				logger.String("from", c.From.String()),
				logger.RiskLevel(c.To.String()),
			}
			if c.Escalated() {
				stats.Escalated++
				j.log.Warn("student risk escalated", fields...)
				continue
			}
			j.log.Info("student risk changed", fields...)
		}
	}
	for _, f := range batch.Failures {
		j.log.Warn("student data incomplete",
			logger.RunID(batch.RunID),
			logger.StudentID(f.StudentID),
			logger.String("reason", f.Reason),
		)
	}
	stats.Duration = time.Since(started)
	j.last.Store(stats)

	j.log.Info("risk recomputed",
		logger.RunID(batch.RunID),
		logger.Int("students", stats.Students),
		logger.Int("high", stats.Counts[risk.LevelHigh]),
		logger.Int("medium", stats.Counts[risk.LevelMedium]),
		logger.Int("low", stats.Counts[risk.LevelLow]),
		logger.Int("changes", stats.Changes),
		logger.Latency(stats.Duration),
	)
	return nil
}

func (j *RecomputeRiskJob) previous(ctx context.Context) (risk.Batch, bool) {
	if j.store == nil {
		return risk.Batch{}, false
	}
	prev, ok, err := j.store.Previous(ctx, j.config.WindowDays)
	if err != nil {
		j.log.Warn("failed to read previous batch", logger.Err(err))
		return risk.Batch{}, false
	}
	return prev, ok
}
