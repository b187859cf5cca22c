package risk

import (
	"github.com/toqeer-ahmed/MindMate/internal/domain/academic"
	"github.com/toqeer-ahmed/MindMate/internal/domain/wellness"
)

// BurnoutPolicy configures the burnout check run alongside classification.
type BurnoutPolicy struct {
	RecentMoods int     // how many of the latest entries to average
	MoodBelow   float64 // emotional burnout below this average
	CourseBelow float64 // academic burnout when any course is below this
}

// DefaultBurnoutPolicy returns the baseline burnout thresholds.
func DefaultBurnoutPolicy() BurnoutPolicy {
	return BurnoutPolicy{
		RecentMoods: 3,
		MoodBelow:   4.0,
		CourseBelow: academic.DefaultAtRiskBelow,
	}
}

// Burnout is the outcome of DetectBurnout.
type Burnout struct {
	Emotional bool `json:"emotional"`
	Academic  bool `json:"academic"`
}

// Suspected reports whether either kind of burnout was detected.
func (b Burnout) Suspected() bool {
	return b.Emotional || b.Academic
}

// DetectBurnout flags emotional burnout when the latest moods average below
// the threshold, and academic burnout when any course falls below its threshold.
func DetectBurnout(moods []wellness.MoodEntry, courses []academic.Course, p BurnoutPolicy) Burnout {
	var b Burnout
	if recent := wellness.LatestMoods(moods, p.RecentMoods); len(recent) > 0 {
		b.Emotional = wellness.AverageMood(recent) < p.MoodBelow
	}
	b.Academic = len(academic.CoursesAtRisk(courses, p.CourseBelow)) > 0
	return b
}
