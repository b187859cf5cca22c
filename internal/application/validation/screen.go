// Package validation screens student records at the boundary between the
// persistence collaborator and the scoring engine.
//
// Records that fail validation are excluded from aggregation and reported
// individually, so one malformed record never breaks a student's row.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/toqeer-ahmed/MindMate/internal/domain/academic"
	"github.com/toqeer-ahmed/MindMate/internal/domain/student"
	"github.com/toqeer-ahmed/MindMate/internal/domain/wellness"
)

// RecordKind names the type of a screened record.
type RecordKind string

const (
	KindCourse     RecordKind = "course"
	KindAssessment RecordKind = "assessment"
	KindMood       RecordKind = "mood"
	KindTask       RecordKind = "task"
	KindJournal    RecordKind = "journal"
)

// RecordIssue describes one rejected or suspicious record.
type RecordIssue struct {
	Kind     RecordKind `json:"kind"`
	RecordID string     `json:"recordId"`
	Reason   string     `json:"reason"`
	// Excluded is false for issues on fields the engine does not compute with.
	Excluded bool `json:"excluded"`
}

// AnyExcluded reports whether at least one record was dropped.
func AnyExcluded(issues []RecordIssue) bool {
	for _, i := range issues {
		if i.Excluded {
			return true
		}
	}
	return false
}

// Screener validates snapshots. It is safe for concurrent use.
type Screener struct {
	validate *validator.Validate
}

// NewScreener creates a Screener.
func NewScreener() *Screener {
	return &Screener{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Screen returns a copy of snap without invalid records, plus one issue per
// problem found. Courses with invalid metadata are kept because only their
// assessments feed the grade; their invalid assessments are dropped.
func (s *Screener) Screen(snap student.Snapshot) (student.Snapshot, []RecordIssue) {
	var issues []RecordIssue
	clean := student.Snapshot{Profile: snap.Profile}

	for _, c := range snap.Courses {
		if err := s.validate.Struct(c); err != nil {
			issues = append(issues, RecordIssue{Kind: KindCourse, RecordID: c.ID, Reason: describe(err)})
		}
		kept := c
		kept.Assessments = nil
		for _, a := range c.Assessments {
			if err := s.validate.Struct(a); err != nil {
				issues = append(issues, RecordIssue{
					Kind:     KindAssessment,
					RecordID: c.ID + "/" + a.ID,
					Reason:   describe(err),
					Excluded: true,
				})
				continue
			}
			kept.Assessments = append(kept.Assessments, a)
		}
		clean.Courses = append(clean.Courses, kept)
	}

	clean.Moods, issues = screenAll(s.validate, snap.Moods, KindMood, func(m wellness.MoodEntry) string { return m.ID }, issues)
	clean.Tasks, issues = screenAll(s.validate, snap.Tasks, KindTask, func(t wellness.Task) string { return t.ID }, issues)
	clean.Journals, issues = screenAll(s.validate, snap.Journals, KindJournal, func(j wellness.JournalEntry) string { return j.ID }, issues)

	// Recent moods overlap the windowed ones; only the windowed records are reported.
	if snap.RecentMoods != nil {
		clean.RecentMoods, _ = screenAll(s.validate, snap.RecentMoods, KindMood, func(m wellness.MoodEntry) string { return m.ID }, nil)
		if clean.RecentMoods == nil {
			clean.RecentMoods = []wellness.MoodEntry{}
		}
	}

	return clean, issues
}

// Course validates a single course and its assessments, as used by the
// academic standing view.
func (s *Screener) Course(c academic.Course) (academic.Course, []RecordIssue) {
	snap, issues := s.Screen(student.Snapshot{Courses: []academic.Course{c}})
	return snap.Courses[0], issues
}

func screenAll[T any](v *validator.Validate, records []T, kind RecordKind, id func(T) string, issues []RecordIssue) ([]T, []RecordIssue) {
	var kept []T
	for _, r := range records {
		if err := v.Struct(r); err != nil {
			issues = append(issues, RecordIssue{Kind: kind, RecordID: id(r), Reason: describe(err), Excluded: true})
			continue
		}
		kept = append(kept, r)
	}
	return kept, issues
}

// describe flattens validator errors into "field: tag" pairs.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
