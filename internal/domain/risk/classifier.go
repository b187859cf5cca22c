// Package risk classifies a student's aggregated wellness signals into an
// advisor-facing risk level.
package risk

import (
	"fmt"
	"math"

	"github.com/toqeer-ahmed/MindMate/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// RISK LEVEL
// ══════════════════════════════════════════════════════════════════════════════

// Level is one of exactly three advisor-facing classes.
type Level string

const (
	LevelLow    Level = "LOW"
	LevelMedium Level = "MEDIUM"
	LevelHigh   Level = "HIGH"
)

// Severity orders levels: LOW < MEDIUM < HIGH.
func (l Level) Severity() int {
	switch l {
	case LevelHigh:
		return 2
	case LevelMedium:
		return 1
	default:
		return 0
	}
}

// IsValid reports whether l is one of the three levels.
func (l Level) IsValid() bool {
	return l == LevelLow || l == LevelMedium || l == LevelHigh
}

// String returns the wire token.
func (l Level) String() string {
	return string(l)
}

// ══════════════════════════════════════════════════════════════════════════════
// SIGNALS & POLICY
// ══════════════════════════════════════════════════════════════════════════════

// Signals are the aggregated inputs of a classification.
type Signals struct {
	// AverageMoodScore is meaningful only when MoodSamples > 0.
	AverageMoodScore float64
	MoodSamples      int
	JournalCount     int
	TasksCompleted   int
	WindowDays       int
}

// HasMood reports whether the mood average is defined.
func (s Signals) HasMood() bool {
	return s.MoodSamples > 0 && !math.IsNaN(s.AverageMoodScore)
}

// Activity is the number of journal entries plus completed tasks.
func (s Signals) Activity() int {
	return s.JournalCount + s.TasksCompleted
}

// Policy holds the tunable thresholds. A mood exactly on a threshold falls
// into the less severe class.
type Policy struct {
	// HighBelow: a defined mood strictly below this is HIGH.
	HighBelow float64
	// MediumBelow: a defined mood strictly below this (and not HIGH) is MEDIUM.
	MediumBelow float64
	// MinActivity: activity below this counts as "no recent activity".
	MinActivity int
}

// DefaultPolicy returns the baseline thresholds.
func DefaultPolicy() Policy {
	return Policy{
		HighBelow:   4.0,
		MediumBelow: 6.5,
		MinActivity: 1,
	}
}

// NewPolicy validates thresholds.
func NewPolicy(highBelow, mediumBelow float64, minActivity int) (Policy, error) {
	p := Policy{HighBelow: highBelow, MediumBelow: mediumBelow, MinActivity: minActivity}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// Validate checks the policy for consistency.
func (p Policy) Validate() error {
	switch {
	case math.IsNaN(p.HighBelow) || math.IsNaN(p.MediumBelow):
		return shared.WrapError("risk", "NewPolicy", shared.ErrValidation, "thresholds must be numbers", shared.ErrInvalidRiskPolicy)
	case p.HighBelow < 0 || p.MediumBelow < 0:
		return shared.WrapError("risk", "NewPolicy", shared.ErrNegativeValue, "thresholds cannot be negative", shared.ErrInvalidRiskPolicy)
	case p.HighBelow > p.MediumBelow:
		return shared.WrapError("risk", "NewPolicy", shared.ErrValueOutOfRange,
			fmt.Sprintf("high threshold %.2f exceeds medium threshold %.2f", p.HighBelow, p.MediumBelow), shared.ErrInvalidRiskPolicy)
	case p.MinActivity < 0:
		return shared.WrapError("risk", "NewPolicy", shared.ErrNegativeValue, "minimum activity cannot be negative", shared.ErrInvalidRiskPolicy)
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// CLASSIFIER
// ══════════════════════════════════════════════════════════════════════════════

// Classifier maps signals to a Level. It is a pure function of its policy
// and inputs.
type Classifier struct {
	policy Policy
}

// NewClassifier creates a classifier. An invalid policy falls back to
// DefaultPolicy so that Classify stays total; validate with NewPolicy first.
func NewClassifier(p Policy) *Classifier {
	if p.Validate() != nil {
		p = DefaultPolicy()
	}
	return &Classifier{policy: p}
}

// Policy returns the active thresholds.
func (c *Classifier) Policy() Policy {
	return c.policy
}

// Classify returns exactly one level. Risk never increases as the mood
// average rises or as activity rises.
func (c *Classifier) Classify(s Signals) Level {
	active := s.Activity() >= c.policy.MinActivity

	if !s.HasMood() {
		if !active {
			return LevelHigh
		}
		return LevelMedium
	}

	switch {
	case s.AverageMoodScore < c.policy.HighBelow:
		return LevelHigh
	case s.AverageMoodScore < c.policy.MediumBelow:
		return LevelMedium
	case !active:
		return LevelMedium
	default:
		return LevelLow
	}
}
