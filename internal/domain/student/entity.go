package student

import (
	"strings"

	"github.com/toqeer-ahmed/MindMate/internal/domain/academic"
	"github.com/toqeer-ahmed/MindMate/internal/domain/risk"
	"github.com/toqeer-ahmed/MindMate/internal/domain/shared"
	"github.com/toqeer-ahmed/MindMate/internal/domain/wellness"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE
// ══════════════════════════════════════════════════════════════════════════════

// Profile is a roster entry.
type Profile struct {
	ID   shared.StudentID `json:"id"`
	Name string           `json:"name"`
}

// DisplayName returns the name, or the id when no name is on record.
func (p Profile) DisplayName() string {
	if name := strings.TrimSpace(p.Name); name != "" {
		return name
	}
	return p.ID.String()
}

// ══════════════════════════════════════════════════════════════════════════════
// SNAPSHOT
// ══════════════════════════════════════════════════════════════════════════════

// Snapshot is every record of one student, as read at one point in time.
type Snapshot struct {
	Profile     Profile
	Courses     []academic.Course
	Moods       []wellness.MoodEntry
	Tasks       []wellness.Task
	Journals    []wellness.JournalEntry
	// RecentMoods are the latest entries regardless of window, newest
	// first. Nil when the repository does not load them.
	RecentMoods []wellness.MoodEntry
}

// RiskInput converts the snapshot into the input of a wellness assessment.
func (s Snapshot) RiskInput(w wellness.Window) risk.Input {
	return risk.Input{
		StudentID:   s.Profile.ID.String(),
		StudentName: s.Profile.DisplayName(),
		Courses:     s.Courses,
		Moods:       s.Moods,
		Tasks:       s.Tasks,
		Journals:    s.Journals,
		RecentMoods: s.RecentMoods,
		Window:      w,
	}
}

// RecordCount returns the number of records in the snapshot, assessments
// included.
func (s Snapshot) RecordCount() int {
	n := len(s.Moods) + len(s.Tasks) + len(s.Journals)
	for _, c := range s.Courses {
		n += 1 + len(c.Assessments)
	}
	return n
}
