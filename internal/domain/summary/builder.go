// Package summary assembles the cross-cutting wellness snapshot of a single
// calendar day.
package summary

import (
	"math"
	"time"

	"github.com/toqeer-ahmed/MindMate/internal/domain/risk"
	"github.com/toqeer-ahmed/MindMate/internal/domain/shared"
	"github.com/toqeer-ahmed/MindMate/internal/domain/wellness"
)

const (
	MinScore = 0.0
	MaxScore = 100.0

	weightSumTolerance = 1e-6
)

// ══════════════════════════════════════════════════════════════════════════════
// POLICY
// ══════════════════════════════════════════════════════════════════════════════

// Weights combine the three normalized contributions. They are non-negative
// and sum to 1.
type Weights struct {
	Mood    float64 `json:"mood"`
	Tasks   float64 `json:"tasks"`
	Journal float64 `json:"journal"`
}

// DefaultWeights returns the 60/25/15 split.
func DefaultWeights() Weights {
	return Weights{Mood: 0.60, Tasks: 0.25, Journal: 0.15}
}

// NewWeights validates a weight split.
func NewWeights(mood, tasks, journal float64) (Weights, error) {
	w := Weights{Mood: mood, Tasks: tasks, Journal: journal}
	if err := w.Validate(); err != nil {
		return Weights{}, err
	}
	return w, nil
}

// Validate checks that each weight is a non-negative number and that they sum to 1.
func (w Weights) Validate() error {
	for _, v := range []float64{w.Mood, w.Tasks, w.Journal} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return shared.WrapError("summary", "NewWeights", shared.ErrValidation, "weights must be finite numbers", shared.ErrInvalidSummaryPolicy)
		}
		if v < 0 {
			return shared.WrapError("summary", "NewWeights", shared.ErrNegativeValue, "weights cannot be negative", shared.ErrInvalidSummaryPolicy)
		}
	}
	if math.Abs(w.Mood+w.Tasks+w.Journal-1) > weightSumTolerance {
		return shared.WrapError("summary", "NewWeights", shared.ErrValueOutOfRange, "weights must sum to 1", shared.ErrInvalidSummaryPolicy)
	}
	return nil
}

// Policy is the complete scoring policy of a daily summary.
type Policy struct {
	Weights Weights
	// NeutralMood is the mood contribution of a day without mood entries.
	NeutralMood float64
	// NeutralTasks is the task contribution of a day without tasks.
	NeutralTasks float64
	// JournalBonus is the journal contribution of a day with at least one entry.
	JournalBonus float64
}

// DefaultPolicy returns the baseline scoring policy.
func DefaultPolicy() Policy {
	return Policy{
		Weights:      DefaultWeights(),
		NeutralMood:  50,
		NeutralTasks: 50,
		JournalBonus: 100,
	}
}

// Validate checks weights and that every fixed contribution lies in [0,100].
func (p Policy) Validate() error {
	if err := p.Weights.Validate(); err != nil {
		return err
	}
	for _, v := range []float64{p.NeutralMood, p.NeutralTasks, p.JournalBonus} {
		if math.IsNaN(v) || v < MinScore || v > MaxScore {
			return shared.WrapError("summary", "NewPolicy", shared.ErrValueOutOfRange, "contributions must be between 0 and 100", shared.ErrInvalidSummaryPolicy)
		}
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DAILY SUMMARY
// ══════════════════════════════════════════════════════════════════════════════

// Breakdown holds the normalized 0..100 contributions before weighting.
type Breakdown struct {
	Mood    float64 `json:"mood"`
	Tasks   float64 `json:"tasks"`
	Journal float64 `json:"journal"`
}

// DailySummary is the derived snapshot of one calendar day.
type DailySummary struct {
	Date           shared.Date             `json:"date"`
	WellnessScore  float64                 `json:"wellnessScore"`
	AverageMood    float64                 `json:"averageMood"`
	MoodEntries    []wellness.MoodEntry    `json:"moodEntries"`
	Tasks          []wellness.Task         `json:"tasks"`
	CompletedTasks []wellness.Task         `json:"completedTasks"`
	JournalEntries []wellness.JournalEntry `json:"journalEntries"`
	Breakdown      Breakdown               `json:"breakdown"`
	RiskLevel      risk.Level              `json:"riskLevel"`
	Prompt         string                  `json:"prompt,omitempty"`
}

// Builder builds daily summaries. It holds no per-call state and is safe for
// concurrent use.
type Builder struct {
	policy     Policy
	classifier *risk.Classifier
	loc        *time.Location
}

// NewBuilder creates a Builder. An invalid policy falls back to DefaultPolicy;
// a nil classifier uses the default risk policy; a nil location means UTC.
func NewBuilder(p Policy, c *risk.Classifier, loc *time.Location) *Builder {
	if p.Validate() != nil {
		p = DefaultPolicy()
	}
	if c == nil {
		c = risk.NewClassifier(risk.DefaultPolicy())
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Builder{policy: p, classifier: c, loc: loc}
}

// Policy returns the active scoring policy.
func (b *Builder) Policy() Policy {
	return b.policy
}

// Location returns the location calendar days are evaluated in.
func (b *Builder) Location() *time.Location {
	return b.loc
}

// Build filters each collection to the records of date and scores the day.
// Records on adjacent days never contribute.
func (b *Builder) Build(date shared.Date, moods []wellness.MoodEntry, tasks []wellness.Task, journals []wellness.JournalEntry) DailySummary {
	dayMoods := wellness.MoodsOn(moods, date, b.loc)
	dayTasks := wellness.TasksOn(tasks, date, b.loc)
	dayJournals := wellness.JournalsOn(journals, date, b.loc)

	var completed []wellness.Task
	for _, t := range dayTasks {
		if t.Done() {
			completed = append(completed, t)
		}
	}

	avg := wellness.AverageMood(dayMoods)
	breakdown := Breakdown{
		Mood:    b.policy.NeutralMood,
		Tasks:   b.policy.NeutralTasks,
		Journal: 0,
	}
	if len(dayMoods) > 0 {
		breakdown.Mood = avg / wellness.MaxMoodScore * 100
	}
	if len(dayTasks) > 0 {
		breakdown.Tasks = float64(len(completed)) / float64(len(dayTasks)) * 100
	}
	if len(dayJournals) > 0 {
		breakdown.Journal = b.policy.JournalBonus
	}

	summary := DailySummary{
		Date:           date,
		WellnessScore:  b.score(breakdown),
		AverageMood:    avg,
		MoodEntries:    orEmpty(dayMoods),
		Tasks:          orEmpty(dayTasks),
		CompletedTasks: orEmpty(completed),
		JournalEntries: orEmpty(dayJournals),
		Breakdown:      breakdown,
		RiskLevel: b.classifier.Classify(risk.Signals{
			AverageMoodScore: avg,
			MoodSamples:      len(dayMoods),
			JournalCount:     len(dayJournals),
			TasksCompleted:   len(completed),
			WindowDays:       1,
		}),
	}
	if latest := wellness.LatestMoods(dayMoods, 1); len(latest) == 1 {
		summary.Prompt = wellness.JournalPrompt(latest[0].MoodScore)
	}
	return summary
}

func (b *Builder) score(c Breakdown) float64 {
	w := b.policy.Weights
	s := w.Mood*c.Mood + w.Tasks*c.Tasks + w.Journal*c.Journal
	return math.Max(MinScore, math.Min(MaxScore, s))
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
