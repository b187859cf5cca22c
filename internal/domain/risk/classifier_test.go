package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toqeer-ahmed/MindMate/internal/domain/shared"
)

func TestClassify_Table(t *testing.T) {
	c := NewClassifier(DefaultPolicy())

	tests := []struct {
		name    string
		signals Signals
		want    Level
	}{
		{"low mood, no activity", Signals{AverageMoodScore: 3.0, MoodSamples: 4}, LevelHigh},
		{"low mood, active", Signals{AverageMoodScore: 3.9, MoodSamples: 2, JournalCount: 5, TasksCompleted: 3}, LevelHigh},
		{"no mood, no activity", Signals{}, LevelHigh},
		{"no mood, active", Signals{JournalCount: 1}, LevelMedium},
		{"high threshold is medium", Signals{AverageMoodScore: 4.0, MoodSamples: 1, TasksCompleted: 1}, LevelMedium},
		{"middle mood", Signals{AverageMoodScore: 5.5, MoodSamples: 3, TasksCompleted: 2}, LevelMedium},
		{"medium threshold is low", Signals{AverageMoodScore: 6.5, MoodSamples: 1, TasksCompleted: 1}, LevelLow},
		{"good mood, idle", Signals{AverageMoodScore: 8.0, MoodSamples: 5}, LevelMedium},
		{"good mood, active", Signals{AverageMoodScore: 8.0, MoodSamples: 5, JournalCount: 1}, LevelLow},
		{"NaN mood is undefined", Signals{AverageMoodScore: math.NaN(), MoodSamples: 3}, LevelHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.signals)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, c.Classify(tt.signals), "classification must be deterministic")
		})
	}
}

func TestClassify_MonotonicInMood(t *testing.T) {
	c := NewClassifier(DefaultPolicy())
	for _, activity := range []int{0, 1, 10} {
		prev := LevelHigh.Severity() + 1
		for m := 1.0; m <= 10.0; m += 0.05 {
			lvl := c.Classify(Signals{AverageMoodScore: m, MoodSamples: 3, TasksCompleted: activity})
			require.True(t, lvl.IsValid())
			assert.LessOrEqual(t, lvl.Severity(), prev, "mood %.2f activity %d", m, activity)
			prev = lvl.Severity()
		}
	}
}

func TestClassify_MonotonicInActivity(t *testing.T) {
	c := NewClassifier(DefaultPolicy())
	moods := []Signals{
		{},
		{AverageMoodScore: 2, MoodSamples: 1},
		{AverageMoodScore: 5, MoodSamples: 1},
		{AverageMoodScore: 9, MoodSamples: 1},
	}
	for _, s := range moods {
		prev := LevelHigh.Severity() + 1
		for n := 0; n <= 5; n++ {
			s.JournalCount = n
			s.TasksCompleted = n / 2
			lvl := c.Classify(s)
			assert.LessOrEqual(t, lvl.Severity(), prev)
			prev = lvl.Severity()
		}
	}
}

func TestClassify_TunableThresholds(t *testing.T) {
	p, err := NewPolicy(5, 8, 3)
	require.NoError(t, err)
	c := NewClassifier(p)

	assert.Equal(t, LevelHigh, c.Classify(Signals{AverageMoodScore: 4.5, MoodSamples: 1, JournalCount: 9}))
	assert.Equal(t, LevelMedium, c.Classify(Signals{AverageMoodScore: 7.5, MoodSamples: 1, JournalCount: 9}))
	assert.Equal(t, LevelMedium, c.Classify(Signals{AverageMoodScore: 9, MoodSamples: 1, JournalCount: 2}))
	assert.Equal(t, LevelLow, c.Classify(Signals{AverageMoodScore: 9, MoodSamples: 1, JournalCount: 2, TasksCompleted: 1}))
	assert.Equal(t, p, c.Policy())
}

func TestNewPolicy_Invalid(t *testing.T) {
	cases := []struct {
		high, medium float64
		minActivity  int
	}{
		{7, 6, 1},
		{-1, 6, 1},
		{4, 6, -1},
		{math.NaN(), 6, 1},
	}
	for _, tc := range cases {
		_, err := NewPolicy(tc.high, tc.medium, tc.minActivity)
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrInvalidRiskPolicy)
		assert.True(t, shared.IsValidation(err))
	}
}

func TestNewClassifier_InvalidPolicyFallsBack(t *testing.T) {
	c := NewClassifier(Policy{HighBelow: 9, MediumBelow: 1})
	assert.Equal(t, DefaultPolicy(), c.Policy())
}

func TestLevel(t *testing.T) {
	assert.Greater(t, LevelHigh.Severity(), LevelMedium.Severity())
	assert.Greater(t, LevelMedium.Severity(), LevelLow.Severity())
	assert.False(t, Level("CRITICAL").IsValid())
	assert.Equal(t, "HIGH", LevelHigh.String())
}
