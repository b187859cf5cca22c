package risk

import (
	"sort"
	"time"
)

// Failure records a student whose row could not be computed from records.
type Failure struct {
	StudentID   string `json:"studentId"`
	StudentName string `json:"studentName"`
	Reason      string `json:"reason"`
}

// Batch is one advisor-portal computation over the whole roster.
type Batch struct {
	RunID      string                  `json:"runId"`
	ComputedAt time.Time               `json:"computedAt"`
	WindowDays int                     `json:"windowDays"`
	Reports    []StudentWellnessReport `json:"reports"`
	Failures   []Failure               `json:"failures"`
}

// Counts returns the number of rows per risk level.
func (b Batch) Counts() map[Level]int {
	out := map[Level]int{LevelLow: 0, LevelMedium: 0, LevelHigh: 0}
	for _, r := range b.Reports {
		out[r.RiskLevel]++
	}
	return out
}

// Find returns the row of a student.
func (b Batch) Find(studentID string) (StudentWellnessReport, bool) {
	for _, r := range b.Reports {
		if r.StudentID == studentID {
			return r, true
		}
	}
	return StudentWellnessReport{}, false
}

// SortBySeverity orders rows most severe first, then by name and id.
func SortBySeverity(reports []StudentWellnessReport) {
	sort.SliceStable(reports, func(i, j int) bool {
		a, b := reports[i], reports[j]
		if a.RiskLevel.Severity() != b.RiskLevel.Severity() {
			return a.RiskLevel.Severity() > b.RiskLevel.Severity()
		}
		if a.StudentName != b.StudentName {
			return a.StudentName < b.StudentName
		}
		return a.StudentID < b.StudentID
	})
}

// Change is a risk-level transition between two batches.
type Change struct {
	StudentID   string `json:"studentId"`
	StudentName string `json:"studentName"`
	From        Level  `json:"from"`
	To          Level  `json:"to"`
}

// Escalated reports whether the student moved to a more severe level.
func (c Change) Escalated() bool {
	return c.To.Severity() > c.From.Severity()
}

// Diff lists students whose level differs between prev and next. Students
// absent from prev are not reported.
func Diff(prev, next Batch) []Change {
	before := make(map[string]Level, len(prev.Reports))
	for _, r := range prev.Reports {
		before[r.StudentID] = r.RiskLevel
	}
	var out []Change
	for _, r := range next.Reports {
		old, ok := before[r.StudentID]
		if !ok || old == r.RiskLevel {
			continue
		}
		out = append(out, Change{StudentID: r.StudentID, StudentName: r.StudentName, From: old, To: r.RiskLevel})
	}
	return out
}
