package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toqeer-ahmed/MindMate/config"
	"github.com/toqeer-ahmed/MindMate/internal/application/query"
	"github.com/toqeer-ahmed/MindMate/internal/domain/shared"
	"github.com/toqeer-ahmed/MindMate/internal/domain/student"
	"github.com/toqeer-ahmed/MindMate/internal/domain/wellness"
	"github.com/toqeer-ahmed/MindMate/pkg/logger"
	"github.com/toqeer-ahmed/MindMate/pkg/timeutil"
)

const idSana = "cccccccc-cccc-4ccc-8ccc-cccccccccccc"

var now = time.Date(2025, time.April, 2, 12, 0, 0, 0, time.UTC)

type oneStudent struct{ snap student.Snapshot }

func (o oneStudent) ListStudents(context.Context) ([]student.Profile, error) {
	return []student.Profile{o.snap.Profile}, nil
}

func (o oneStudent) LoadSnapshot(_ context.Context, id shared.StudentID, _ wellness.Window) (student.Snapshot, error) {
	if id != o.snap.Profile.ID {
		return student.Snapshot{}, shared.ErrStudentNotFound
	}
	return o.snap, nil
}

func engineConfig() config.EngineConfig {
	return config.EngineConfig{
		RiskHighBelow:        4,
		RiskMediumBelow:      6.5,
		RiskMinActivity:      1,
		SummaryWeightMood:    0.6,
		SummaryWeightTasks:   0.25,
		SummaryWeightJournal: 0.15,
		SummaryNeutralMood:   50,
		SummaryNeutralTasks:  50,
		ReportWindowDays:     7,
		AtRiskCourseBelow:    60,
		BurnoutRecentMoods:   3,
		BurnoutMoodBelow:     4,
		BatchConcurrency:     4,
	}
}

func repo() oneStudent {
	return oneStudent{snap: student.Snapshot{
		Profile: student.Profile{ID: idSana, Name: "Sana"},
		Moods: []wellness.MoodEntry{
			{ID: "m1", MoodScore: 8, Timestamp: now.Add(-3 * time.Hour)},
			{ID: "m2", MoodScore: 6, Timestamp: now.Add(-time.Hour)},
		},
		Journals: []wellness.JournalEntry{{ID: "j1", Title: "ok", CreatedAt: now.Add(-2 * time.Hour)}},
	}}
}

func TestNewQueries_AppliesEnginePolicies(t *testing.T) {
	eng := engineConfig()
	eng.SummaryWeightMood, eng.SummaryWeightTasks, eng.SummaryWeightJournal = 1, 0, 0
	eng.RiskMediumBelow = 7.5
	cfg := &config.Config{Engine: eng, Features: config.LoadFeatureFlags()}

	q, err := NewQueries(cfg, repo(), nil, timeutil.FixedClock(now, time.UTC), logger.Nop())
	require.NoError(t, err)

	day, err := q.DailySummary.Handle(context.Background(), query.GetDailySummaryQuery{StudentID: idSana})
	require.NoError(t, err)
	assert.InDelta(t, 70.0, day.Summary.WellnessScore, 1e-9, "journal and task weights are zero")

	reports, err := q.WellnessReports.Handle(context.Background(), query.GetWellnessReportsQuery{})
	require.NoError(t, err)
	assert.Equal(t, 7, reports.WindowDays)
	require.Len(t, reports.Reports, 1)
	assert.Equal(t, "MEDIUM", string(reports.Reports[0].RiskLevel), "7.0 is below the raised medium threshold")
}

func TestNewQueries_RejectsInvalidPolicies(t *testing.T) {
	eng := engineConfig()
	eng.RiskHighBelow = 8
	_, err := NewQueries(&config.Config{Engine: eng}, repo(), nil, timeutil.NewClock(nil), logger.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "risk policy")

	eng = engineConfig()
	eng.SummaryWeightJournal = 0.5
	_, err = NewQueries(&config.Config{Engine: eng}, repo(), nil, timeutil.NewClock(nil), logger.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "summary policy")
}

func TestNew_RequiresDatabaseURL(t *testing.T) {
	_, err := New(context.Background(), &config.Config{}, logger.Nop())
	require.Error(t, err)
}
