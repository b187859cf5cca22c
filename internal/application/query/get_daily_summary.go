package query

import (
	"context"

	"github.com/toqeer-ahmed/MindMate/config"
	"github.com/toqeer-ahmed/MindMate/internal/application/validation"
	"github.com/toqeer-ahmed/MindMate/internal/domain/shared"
	"github.com/toqeer-ahmed/MindMate/internal/domain/student"
	"github.com/toqeer-ahmed/MindMate/internal/domain/summary"
	"github.com/toqeer-ahmed/MindMate/internal/domain/wellness"
	"github.com/toqeer-ahmed/MindMate/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET DAILY SUMMARY QUERY
// The wellness snapshot of one calendar day in the configured timezone.
// ══════════════════════════════════════════════════════════════════════════════

// GetDailySummaryQuery selects the student and the day.
type GetDailySummaryQuery struct {
	StudentID string
	// Date is the calendar day; zero means today.
	Date shared.Date
}

// Validate parses the student id.
func (q *GetDailySummaryQuery) Validate() (shared.StudentID, error) {
	return shared.NewStudentID(q.StudentID)
}

// GetDailySummaryResult wraps the summary with the screening outcome.
type GetDailySummaryResult struct {
	StudentID string                   `json:"studentId"`
	Summary   summary.DailySummary     `json:"summary"`
	Issues    []validation.RecordIssue `json:"issues,omitempty"`
}

// GetDailySummaryHandler handles the query.
type GetDailySummaryHandler struct {
	repo     student.Repository
	screener *validation.Screener
	builder  *summary.Builder
	clock    *timeutil.Clock
	features Features
}

// NewGetDailySummaryHandler creates the handler. The builder and the clock
// must use the same location.
func NewGetDailySummaryHandler(
	repo student.Repository,
	screener *validation.Screener,
	builder *summary.Builder,
	clock *timeutil.Clock,
	features Features,
) *GetDailySummaryHandler {
	return &GetDailySummaryHandler{
		repo:     repo,
		screener: screener,
		builder:  builder,
		clock:    clock,
		features: features,
	}
}

// Handle executes the query.
func (h *GetDailySummaryHandler) Handle(ctx context.Context, query GetDailySummaryQuery) (*GetDailySummaryResult, error) {
	id, err := query.Validate()
	if err != nil {
		return nil, err
	}

	loc := h.builder.Location()
	day := query.Date
	if day.IsZero() {
		day = shared.DateOf(h.clock.Now(), loc)
	}

	w := wellness.DayWindow(day, loc)
	snap, err := h.repo.LoadSnapshot(ctx, id, w)
	if err != nil {
		return nil, loadError("GetDailySummary", err)
	}
	clean, issues := h.screener.Screen(student.Snapshot{
		Profile:  snap.Profile,
		Moods:    snap.Moods,
		Tasks:    snap.Tasks,
		Journals: snap.Journals,
	})

	s := h.builder.Build(day, clean.Moods, clean.Tasks, clean.Journals)
	if enabled(h.features, config.FeatureSummaryRedactJournal) {
		s.JournalEntries = redactJournals(s.JournalEntries)
	}

	result := &GetDailySummaryResult{StudentID: snap.Profile.ID.String(), Summary: s}
	if enabled(h.features, config.FeatureExposeIssues) {
		result.Issues = issues
	}
	return result, nil
}

// RedactedContent replaces journal bodies when redaction is on.
const RedactedContent = "Protected Content"

// redactJournals hides journal bodies, keeping what the dashboard lists.
func redactJournals(entries []wellness.JournalEntry) []wellness.JournalEntry {
	out := make([]wellness.JournalEntry, len(entries))
	for i, e := range entries {
		e.Content = RedactedContent
		out[i] = e
	}
	return out
}
