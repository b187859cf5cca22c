// Package academic holds courses, graded assessments and the grade calculator.
package academic

import (
	"github.com/toqeer-ahmed/MindMate/internal/domain/shared"
)

// AssessmentKind is the type of a graded assessment.
type AssessmentKind string

const (
	KindQuiz       AssessmentKind = "QUIZ"
	KindAssignment AssessmentKind = "ASSIGNMENT"
	KindOEL        AssessmentKind = "OEL" // open-ended lab
	KindMidterm    AssessmentKind = "MIDTERM"
	KindFinal      AssessmentKind = "FINAL"
)

// IsValid reports whether k is one of the known kinds.
func (k AssessmentKind) IsValid() bool {
	switch k {
	case KindQuiz, KindAssignment, KindOEL, KindMidterm, KindFinal:
		return true
	}
	return false
}

// Weightage is the relative contribution of an assessment to its course.
// Weightages of a course need not sum to 100.
type Weightage float64

// NewWeightage validates a weightage.
func NewWeightage(w float64) (Weightage, error) {
	if w < 0 {
		return 0, shared.ErrNegativeWeightage
	}
	return Weightage(w), nil
}

// CreditHours of a course, 1..5.
type CreditHours int

// NewCreditHours validates credit hours.
func NewCreditHours(h int) (CreditHours, error) {
	if h < 1 || h > 5 {
		return 0, shared.ErrInvalidCreditHours
	}
	return CreditHours(h), nil
}

// Assessment is a single graded item of a course.
type Assessment struct {
	ID            string         `json:"id" validate:"required"`
	Kind          AssessmentKind `json:"kind" validate:"oneof=QUIZ ASSIGNMENT OEL MIDTERM FINAL"`
	Name          string         `json:"name,omitempty"`
	TotalMarks    float64        `json:"totalMarks" validate:"gt=0"`
	ObtainedMarks float64        `json:"obtainedMarks" validate:"gte=0"`
	Weightage     Weightage      `json:"weightage" validate:"gte=0"`
}

// Gradable reports whether the assessment takes part in the weighted percentage.
func (a Assessment) Gradable() bool {
	return a.TotalMarks > 0
}

// Percentage returns obtained/total as a percentage. Values above 100 are kept.
func (a Assessment) Percentage() float64 {
	if !a.Gradable() {
		return 0
	}
	return a.ObtainedMarks / a.TotalMarks * 100
}

// Course is owned by a student and owns its assessments.
type Course struct {
	ID          string       `json:"id" validate:"required"`
	Name        string       `json:"name" validate:"required"`
	CreditHours CreditHours  `json:"creditHours" validate:"min=1,max=5"`
	Assessments []Assessment `json:"assessments" validate:"-"`
}
