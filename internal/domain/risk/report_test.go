package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/toqeer-ahmed/MindMate/internal/domain/academic"
	"github.com/toqeer-ahmed/MindMate/internal/domain/wellness"
)

var asOf = time.Date(2025, time.April, 20, 18, 0, 0, 0, time.UTC)

func moodAt(score int, ago time.Duration) wellness.MoodEntry {
	return wellness.MoodEntry{ID: "m", MoodScore: wellness.MoodScore(score), Timestamp: asOf.Add(-ago)}
}

func TestAssess_WindowedSignals(t *testing.T) {
	done := asOf.Add(-24 * time.Hour)
	a := NewAssessor(NewClassifier(DefaultPolicy()), DefaultBurnoutPolicy(), time.UTC)

	report := a.Assess(Input{
		StudentID:   "s1",
		StudentName: "Ayesha Khan",
		Moods: []wellness.MoodEntry{
			moodAt(8, time.Hour),
			moodAt(6, 48*time.Hour),
			moodAt(1, 30*24*time.Hour), // outside the window
		},
		Tasks: []wellness.Task{
			{ID: "t1", Status: wellness.TaskDone, CompletedAt: &done},
			{ID: "t2", Status: wellness.TaskTodo},
		},
		Journals: []wellness.JournalEntry{
			{ID: "j1", CreatedAt: asOf.Add(-2 * time.Hour)},
		},
		Window: wellness.LastDays(asOf, 7, time.UTC),
	})

	assert.Equal(t, "s1", report.StudentID)
	assert.InDelta(t, 7.0, report.AverageMoodScore, 1e-9)
	assert.Equal(t, 2, report.MoodSamples)
	assert.Equal(t, 1, report.JournalCount)
	assert.Equal(t, 1, report.TasksCompleted)
	assert.Equal(t, LevelLow, report.RiskLevel)
	assert.Equal(t, 7, report.WindowDays)
	assert.Equal(t, academic.NoCoursesAverage, report.AcademicAverage)
	assert.False(t, report.DataIncomplete)
}

func TestAssess_ScenarioLowMoodNoActivity(t *testing.T) {
	a := NewAssessor(nil, DefaultBurnoutPolicy(), nil)
	report := a.Assess(Input{
		StudentID: "s2",
		Moods:     []wellness.MoodEntry{moodAt(3, time.Hour)},
		Window:    wellness.LastDays(asOf, 7, time.UTC),
	})
	assert.InDelta(t, 3.0, report.AverageMoodScore, 1e-9)
	assert.Equal(t, LevelHigh, report.RiskLevel)
	assert.True(t, report.BurnoutSuspected)
}

func TestAssess_Idempotent(t *testing.T) {
	a := NewAssessor(nil, DefaultBurnoutPolicy(), nil)
	in := Input{
		StudentID: "s3",
		Moods:     []wellness.MoodEntry{moodAt(5, time.Hour), moodAt(7, 2*time.Hour)},
		Window:    wellness.LastDays(asOf, 7, time.UTC),
	}
	assert.Equal(t, a.Assess(in), a.Assess(in))
}

func TestFallback(t *testing.T) {
	a := NewAssessor(nil, DefaultBurnoutPolicy(), nil)
	row := a.Fallback("s4", "Bilal", 7)
	assert.True(t, row.DataIncomplete)
	assert.Equal(t, LevelHigh, row.RiskLevel)
	assert.Equal(t, 0.0, row.AverageMoodScore)
	assert.Equal(t, 7, row.WindowDays)
}

func TestDetectBurnout(t *testing.T) {
	p := DefaultBurnoutPolicy()

	emotional := DetectBurnout([]wellness.MoodEntry{
		moodAt(9, 96*time.Hour), // older than the three latest
		moodAt(3, 3*time.Hour),
		moodAt(4, 2*time.Hour),
		moodAt(4, time.Hour),
	}, nil, p)
	assert.True(t, emotional.Emotional)
	assert.False(t, emotional.Academic)
	assert.True(t, emotional.Suspected())

	weak := academic.Course{ID: "c", Name: "Physics", CreditHours: 3, Assessments: []academic.Assessment{
		{ID: "a", Kind: academic.KindQuiz, TotalMarks: 10, ObtainedMarks: 5, Weightage: 1},
	}}
	acad := DetectBurnout([]wellness.MoodEntry{moodAt(8, time.Hour)}, []academic.Course{weak}, p)
	assert.False(t, acad.Emotional)
	assert.True(t, acad.Academic)

	none := DetectBurnout(nil, nil, p)
	assert.False(t, none.Suspected())
}

func TestAssess_BurnoutLooksPastTheWindow(t *testing.T) {
	a := NewAssessor(nil, DefaultBurnoutPolicy(), time.UTC)
	windowed := []wellness.MoodEntry{moodAt(7, time.Hour)}
	in := Input{
		StudentID: "s5",
		Moods:     windowed,
		// two low entries from before the window plus the windowed one
		RecentMoods: []wellness.MoodEntry{moodAt(7, time.Hour), moodAt(2, 10*24*time.Hour), moodAt(2, 11*24*time.Hour)},
		Window:      wellness.LastDays(asOf, 7, time.UTC),
	}

	report := a.Assess(in)
	assert.InDelta(t, 7.0, report.AverageMoodScore, 1e-9)
	assert.Equal(t, LevelLow, report.RiskLevel)
	assert.True(t, report.BurnoutSuspected, "the three latest moods average below 4")

	in.RecentMoods = nil
	assert.False(t, a.Assess(in).BurnoutSuspected, "falls back to the windowed moods")
}
