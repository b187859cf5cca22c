package query

import (
	"context"

	"github.com/toqeer-ahmed/MindMate/config"
	"github.com/toqeer-ahmed/MindMate/internal/application/validation"
	"github.com/toqeer-ahmed/MindMate/internal/domain/shared"
	"github.com/toqeer-ahmed/MindMate/internal/domain/student"
	"github.com/toqeer-ahmed/MindMate/internal/domain/wellness"
	"github.com/toqeer-ahmed/MindMate/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET MOOD TREND QUERY
// The mood chart of the dashboard: one point per entry, or per day on request.
// ══════════════════════════════════════════════════════════════════════════════

const (
	DefaultTrendDays = 30
	MaxTrendDays     = 365
)

// GetMoodTrendQuery contains the chart parameters.
type GetMoodTrendQuery struct {
	StudentID string
	// Days is the window length ending now; 0 means DefaultTrendDays.
	Days int
	// PerDay merges same-day entries into one mean point.
	PerDay bool
}

// Validate parses the id and normalizes the window length.
func (q *GetMoodTrendQuery) Validate() (shared.StudentID, error) {
	id, err := shared.NewStudentID(q.StudentID)
	if err != nil {
		return "", err
	}
	if q.Days == 0 {
		q.Days = DefaultTrendDays
	}
	if q.Days < 1 || q.Days > MaxTrendDays {
		return "", shared.NewDomainError("query", "GetMoodTrend", shared.ErrValueOutOfRange, "days must be between 1 and 365")
	}
	return id, nil
}

// GetMoodTrendResult is the chart series plus its summary numbers.
type GetMoodTrendResult struct {
	StudentID   string                   `json:"studentId"`
	Days        int                      `json:"days"`
	PerDay      bool                     `json:"perDay"`
	AverageMood float64                  `json:"averageMood"`
	Samples     int                      `json:"samples"`
	Points      []wellness.TrendPoint    `json:"points"`
	Issues      []validation.RecordIssue `json:"issues,omitempty"`
}

// GetMoodTrendHandler handles the query.
type GetMoodTrendHandler struct {
	repo     student.Repository
	screener *validation.Screener
	clock    *timeutil.Clock
	features Features
}

// NewGetMoodTrendHandler creates the handler.
func NewGetMoodTrendHandler(repo student.Repository, screener *validation.Screener, clock *timeutil.Clock, features Features) *GetMoodTrendHandler {
	return &GetMoodTrendHandler{repo: repo, screener: screener, clock: clock, features: features}
}

// Handle executes the query.
func (h *GetMoodTrendHandler) Handle(ctx context.Context, query GetMoodTrendQuery) (*GetMoodTrendResult, error) {
	id, err := query.Validate()
	if err != nil {
		return nil, err
	}

	w := wellness.LastDays(h.clock.Now(), query.Days, h.clock.Location())
	snap, err := h.repo.LoadSnapshot(ctx, id, w)
	if err != nil {
		return nil, loadError("GetMoodTrend", err)
	}
	clean, issues := h.screener.Screen(student.Snapshot{Profile: snap.Profile, Moods: snap.Moods})
	moods := wellness.MoodsIn(clean.Moods, w)

	points := wellness.MoodTrend(moods, h.clock.Location())
	if query.PerDay {
		points = wellness.DailyMoodTrend(moods, h.clock.Location())
	}
	if points == nil {
		points = []wellness.TrendPoint{}
	}

	result := &GetMoodTrendResult{
		StudentID:   snap.Profile.ID.String(),
		Days:        query.Days,
		PerDay:      query.PerDay,
		AverageMood: wellness.AverageMood(moods),
		Samples:     len(moods),
		Points:      points,
	}
	if enabled(h.features, config.FeatureExposeIssues) {
		result.Issues = issues
	}
	return result, nil
}
