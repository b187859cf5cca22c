package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/toqeer-ahmed/MindMate/config"
	"github.com/toqeer-ahmed/MindMate/internal/application/validation"
	"github.com/toqeer-ahmed/MindMate/internal/domain/risk"
	"github.com/toqeer-ahmed/MindMate/internal/domain/shared"
	"github.com/toqeer-ahmed/MindMate/internal/domain/student"
	"github.com/toqeer-ahmed/MindMate/internal/domain/wellness"
	"github.com/toqeer-ahmed/MindMate/pkg/logger"
	"github.com/toqeer-ahmed/MindMate/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET WELLNESS REPORTS QUERY
// The advisor portal list: one row per student, most severe first.
// One student's broken records never fail the batch; that student gets a
// fallback row and a failure entry instead.
// ══════════════════════════════════════════════════════════════════════════════

const MaxReportWindowDays = 90

// ReportStore keeps the latest computed batch per window length.
type ReportStore interface {
	Latest(ctx context.Context, windowDays int) (risk.Batch, error)
	Store(ctx context.Context, b risk.Batch) error
}

// GetWellnessReportsQuery contains the batch parameters.
type GetWellnessReportsQuery struct {
	// WindowDays is the aggregation window; 0 means the configured default.
	WindowDays int
	// Fresh bypasses the report cache.
	Fresh bool
}

// Validate checks the window length.
func (q *GetWellnessReportsQuery) Validate(defaultWindow int) error {
	if q.WindowDays == 0 {
		q.WindowDays = defaultWindow
	}
	if q.WindowDays < 1 || q.WindowDays > MaxReportWindowDays {
		return shared.NewDomainError("query", "GetWellnessReports", shared.ErrValueOutOfRange, "windowDays must be between 1 and 90")
	}
	return nil
}

// GetWellnessReportsResult is the batch plus where it came from.
type GetWellnessReportsResult struct {
	risk.Batch
	Counts    map[risk.Level]int `json:"counts"`
	FromCache bool               `json:"fromCache"`
}

// GetWellnessReportsHandler handles the query and the scheduled recomputation.
type GetWellnessReportsHandler struct {
	repo          student.Repository
	screener      *validation.Screener
	assessor      *risk.Assessor
	store         ReportStore
	clock         *timeutil.Clock
	features      Features
	log           *logger.Logger
	concurrency   int
	defaultWindow int
}

// ReportsOptions configures GetWellnessReportsHandler.
type ReportsOptions struct {
	// Store may be nil; the batch is then always computed.
	Store         ReportStore
	Features      Features
	Logger        *logger.Logger
	Concurrency   int
	DefaultWindow int
}

// NewGetWellnessReportsHandler creates the handler.
func NewGetWellnessReportsHandler(
	repo student.Repository,
	screener *validation.Screener,
	assessor *risk.Assessor,
	clock *timeutil.Clock,
	opts ReportsOptions,
) *GetWellnessReportsHandler {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.DefaultWindow <= 0 {
		opts.DefaultWindow = 7
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &GetWellnessReportsHandler{
		repo:          repo,
		screener:      screener,
		assessor:      assessor,
		store:         opts.Store,
		clock:         clock,
		features:      opts.Features,
		log:           opts.Logger.With(logger.Component("wellness_reports")),
		concurrency:   opts.Concurrency,
		defaultWindow: opts.DefaultWindow,
	}
}

// Handle returns the cached batch when one is fresh, otherwise computes it.
func (h *GetWellnessReportsHandler) Handle(ctx context.Context, query GetWellnessReportsQuery) (*GetWellnessReportsResult, error) {
	if err := query.Validate(h.defaultWindow); err != nil {
		return nil, err
	}

	if h.cacheEnabled() && !query.Fresh {
		b, err := h.store.Latest(ctx, query.WindowDays)
		if err == nil {
			return newReportsResult(b, true), nil
		}
		h.log.Debug("report cache miss", logger.Int("window_days", query.WindowDays), logger.Err(err))
	}

	b, err := h.Compute(ctx, query.WindowDays)
	if err != nil {
		return nil, err
	}
	if h.cacheEnabled() {
		if err := h.store.Store(ctx, b); err != nil {
			h.log.Warn("failed to cache reports", logger.RunID(b.RunID), logger.Err(err))
		}
	}
	return newReportsResult(b, false), nil
}

// Compute builds a batch over the whole roster as of now. It fails only
// when the roster itself cannot be read or ctx ends.
func (h *GetWellnessReportsHandler) Compute(ctx context.Context, windowDays int) (risk.Batch, error) {
	started := time.Now()
	asOf := h.clock.Now()
	w := wellness.LastDays(asOf, windowDays, h.clock.Location())

	roster, err := h.repo.ListStudents(ctx)
	if err != nil {
		return risk.Batch{}, shared.WrapError("query", "GetWellnessReports", shared.ErrServiceUnavailable, "failed to list students", err)
	}

	batch := risk.Batch{
		RunID:      uuid.NewString(),
		ComputedAt: asOf,
		WindowDays: windowDays,
		Reports:    make([]risk.StudentWellnessReport, len(roster)),
	}
	failures := make([]*risk.Failure, len(roster))

	var g errgroup.Group
	g.SetLimit(h.concurrency)
	for i, p := range roster {
		i, p := i, p
		g.Go(func() error {
			batch.Reports[i], failures[i] = h.assessOne(ctx, p, w, windowDays)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return risk.Batch{}, shared.WrapError("query", "GetWellnessReports", shared.ErrTimeout, "report computation interrupted", err)
	}

	batch.Failures = []risk.Failure{}
	for _, f := range failures {
		if f != nil {
			batch.Failures = append(batch.Failures, *f)
		}
	}
	risk.SortBySeverity(batch.Reports)

	h.log.Info("wellness reports computed",
		logger.RunID(batch.RunID),
		logger.Int("students", len(roster)),
		logger.Int("failures", len(batch.Failures)),
		logger.Latency(time.Since(started)),
	)
	return batch, nil
}

// assessOne never panics and never returns an empty row.
func (h *GetWellnessReportsHandler) assessOne(ctx context.Context, p student.Profile, w wellness.Window, windowDays int) (report risk.StudentWellnessReport, failure *risk.Failure) {
	fail := func(reason string) {
		report = h.assessor.Fallback(p.ID.String(), p.DisplayName(), windowDays)
		failure = &risk.Failure{StudentID: p.ID.String(), StudentName: p.DisplayName(), Reason: reason}
		h.log.Warn("student report degraded", logger.StudentID(p.ID.String()), logger.String("reason", reason))
	}
	defer func() {
		if r := recover(); r != nil {
			fail(fmt.Sprintf("internal error: %v", r))
		}
	}()

	snap, err := h.repo.LoadSnapshot(ctx, p.ID, w)
	if err != nil {
		reason := "failed to load records"
		if errors.Is(err, shared.ErrStudentNotFound) {
			reason = "student no longer exists"
		}
		fail(reason)
		return report, failure
	}
	if snap.Profile.ID == "" {
		snap.Profile = p
	}

	clean, issues := h.screener.Screen(snap)
	report = h.assessor.Assess(clean.RiskInput(w))
	report.Issues = len(issues)
	report.DataIncomplete = validation.AnyExcluded(issues)
	if len(issues) > 0 {
		h.log.Debug("records screened",
			logger.StudentID(p.ID.String()),
			logger.Int("records", snap.RecordCount()),
			logger.Int("issues", len(issues)),
			logger.Bool("excluded", report.DataIncomplete),
		)
	}
	if !enabled(h.features, config.FeatureReportsBurnout) {
		report.BurnoutSuspected = false
	}
	return report, nil
}

func (h *GetWellnessReportsHandler) cacheEnabled() bool {
	return h.store != nil && enabled(h.features, config.FeatureReportsCache)
}

func newReportsResult(b risk.Batch, fromCache bool) *GetWellnessReportsResult {
	if b.Failures == nil {
		b.Failures = []risk.Failure{}
	}
	if b.Reports == nil {
		b.Reports = []risk.StudentWellnessReport{}
	}
	return &GetWellnessReportsResult{Batch: b, Counts: b.Counts(), FromCache: fromCache}
}
