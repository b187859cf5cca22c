// Package app wires configuration, infrastructure and the read-side use
// cases shared by the server and worker binaries.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/toqeer-ahmed/MindMate/config"
	"github.com/toqeer-ahmed/MindMate/internal/application/query"
	"github.com/toqeer-ahmed/MindMate/internal/application/validation"
	"github.com/toqeer-ahmed/MindMate/internal/domain/risk"
	"github.com/toqeer-ahmed/MindMate/internal/domain/student"
	"github.com/toqeer-ahmed/MindMate/internal/domain/summary"
	"github.com/toqeer-ahmed/MindMate/internal/infrastructure/persistence/postgres"
	"github.com/toqeer-ahmed/MindMate/internal/infrastructure/persistence/redis"
	"github.com/toqeer-ahmed/MindMate/pkg/logger"
	"github.com/toqeer-ahmed/MindMate/pkg/retry"
	"github.com/toqeer-ahmed/MindMate/pkg/timeutil"
)

// App holds the long-lived dependencies of a process.
type App struct {
	Config *config.Config
	Log    *logger.Logger
	Clock  *timeutil.Clock

	DB   *postgres.Connection
	Repo *postgres.SnapshotRepository

	// Cache and Reports are nil when Redis is disabled or unreachable.
	Cache   *redis.Cache
	Reports *redis.ReportCache

	Queries Queries
}

// Queries are the read-side use cases.
type Queries struct {
	AcademicStanding *query.GetAcademicStandingHandler
	MoodTrend        *query.GetMoodTrendHandler
	DailySummary     *query.GetDailySummaryHandler
	WellnessReports  *query.GetWellnessReportsHandler
}

// NewLogger builds the process logger from the observability settings.
func NewLogger(cfg *config.Config) *logger.Logger {
	opts := logger.DefaultOptions()
	opts.Level = logger.ParseLevel(cfg.Observability.LogLevel)
	if strings.EqualFold(cfg.Observability.LogFormat, string(logger.FormatConsole)) {
		opts.Format = logger.FormatConsole
	}
	return logger.New(opts).With(
		logger.String("app", cfg.App.Name),
		logger.String("env", string(cfg.App.Environment)),
	)
}

// New connects to PostgreSQL (required) and Redis (optional), applies
// migrations when enabled and builds the use cases.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	a := &App{
		Config: cfg,
		Log:    log,
		Clock:  timeutil.NewClock(cfg.App.Location),
	}

	db, err := connectPostgres(ctx, cfg.Database, log)
	if err != nil {
		return nil, err
	}
	a.DB = db

	if cfg.Database.AutoMigrate {
		applied, err := postgres.NewMigrator(db).Migrate(ctx)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("migrations completed", logger.Int("applied", applied))
	}
	a.Repo = postgres.NewSnapshotRepository(db).WithRecentMoods(cfg.Engine.BurnoutRecentMoods)

	if !cfg.Redis.Disabled {
		cache, err := connectRedis(ctx, cfg.Redis, log)
		if err != nil {
			log.Warn("redis unavailable, report caching disabled", logger.Err(err))
		} else {
			a.Cache = cache
			a.Reports = redis.NewReportCache(cache, cfg.HTTP.ReportCacheTTL)
		}
	}

	var store query.ReportStore
	if a.Reports != nil {
		store = a.Reports
	}
	a.Queries, err = NewQueries(cfg, a.Repo, store, a.Clock, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// NewQueries builds the use cases from the engine policies in cfg.
// store may be nil.
func NewQueries(cfg *config.Config, repo student.Repository, store query.ReportStore, clock *timeutil.Clock, log *logger.Logger) (Queries, error) {
	riskPolicy, err := cfg.Engine.RiskPolicy()
	if err != nil {
		return Queries{}, fmt.Errorf("risk policy: %w", err)
	}
	summaryPolicy, err := cfg.Engine.SummaryPolicy()
	if err != nil {
		return Queries{}, fmt.Errorf("summary policy: %w", err)
	}

	var features query.Features
	if cfg.Features != nil {
		features = cfg.Features
	}

	loc := clock.Location()
	screener := validation.NewScreener()
	classifier := risk.NewClassifier(riskPolicy)
	assessor := risk.NewAssessor(classifier, cfg.Engine.BurnoutPolicy(), loc)
	builder := summary.NewBuilder(summaryPolicy, classifier, loc)

	return Queries{
		AcademicStanding: query.NewGetAcademicStandingHandler(repo, screener, clock, features, cfg.Engine.AtRiskCourseBelow),
		MoodTrend:        query.NewGetMoodTrendHandler(repo, screener, clock, features),
		DailySummary:     query.NewGetDailySummaryHandler(repo, screener, builder, clock, features),
		WellnessReports: query.NewGetWellnessReportsHandler(repo, screener, assessor, clock, query.ReportsOptions{
			Store:         store,
			Features:      features,
			Logger:        log,
			Concurrency:   cfg.Engine.BatchConcurrency,
			DefaultWindow: cfg.Engine.ReportWindowDays,
		}),
	}, nil
}

// Close releases connections.
func (a *App) Close() {
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			a.Log.Warn("failed to close redis", logger.Err(err))
		}
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

func connectPostgres(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (*postgres.Connection, error) {
	settings := postgres.DefaultPoolSettings()
	if cfg.MaxOpenConns > 0 {
		settings.MaxConns = int32(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 && cfg.MaxIdleConns <= int(settings.MaxConns) {
		settings.MinConns = int32(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		settings.MaxConnLifetime = cfg.ConnMaxLifetime
	}
	if cfg.ConnMaxIdleTime > 0 {
		settings.MaxConnIdleTime = cfg.ConnMaxIdleTime
	}

	log.Info("connecting to database...")
	db, err := retry.DoWithData(ctx, retry.ConnectRetrier(onRetry(log, "postgres")), func(ctx context.Context) (*postgres.Connection, error) {
		return postgres.NewConnection(ctx, cfg.URL, settings)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("database connection established")
	return db, nil
}

func connectRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (*redis.Cache, error) {
	rc := redis.DefaultConfig()
	rc.URL = cfg.URL
	rc.Host = cfg.Host
	rc.Port = cfg.Port
	rc.Password = cfg.Password
	rc.DB = cfg.DB
	if cfg.PoolSize > 0 {
		rc.PoolSize = cfg.PoolSize
	}
	rc.MinIdleConns = cfg.MinIdleConns
	if cfg.DialTimeout > 0 {
		rc.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		rc.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		rc.WriteTimeout = cfg.WriteTimeout
	}

	log.Info("connecting to redis...")
	cache, err := retry.DoWithData(ctx, retry.ConnectRetrier(onRetry(log, "redis")), func(ctx context.Context) (*redis.Cache, error) {
		return redis.NewCache(ctx, rc)
	})
	if err != nil {
		return nil, err
	}
	log.Info("redis connection established")
	return cache, nil
}

func onRetry(log *logger.Logger, target string) func(int, error, time.Duration) {
	return func(attempt int, err error, delay time.Duration) {
		log.Warn("connection attempt failed",
			logger.String("target", target),
			logger.Int("attempt", attempt),
			logger.Duration("retry_in", delay),
			logger.Err(err),
		)
	}
}
