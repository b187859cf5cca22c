package query

import (
	"context"

	"github.com/toqeer-ahmed/MindMate/config"
	"github.com/toqeer-ahmed/MindMate/internal/application/validation"
	"github.com/toqeer-ahmed/MindMate/internal/domain/academic"
	"github.com/toqeer-ahmed/MindMate/internal/domain/shared"
	"github.com/toqeer-ahmed/MindMate/internal/domain/student"
	"github.com/toqeer-ahmed/MindMate/internal/domain/wellness"
	"github.com/toqeer-ahmed/MindMate/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET ACADEMIC STANDING QUERY
// Per-course percentages, the overall average and the courses at risk.
// ══════════════════════════════════════════════════════════════════════════════

// GetAcademicStandingQuery identifies the student.
type GetAcademicStandingQuery struct {
	StudentID string
}

// Validate parses the student id.
func (q *GetAcademicStandingQuery) Validate() (shared.StudentID, error) {
	return shared.NewStudentID(q.StudentID)
}

// CourseStandingDTO is one course row.
type CourseStandingDTO struct {
	CourseID    string  `json:"courseId"`
	Name        string  `json:"name"`
	CreditHours int     `json:"creditHours"`
	Assessments int     `json:"assessments"`
	Percentage  float64 `json:"percentage"`
	AtRisk      bool    `json:"atRisk"`
}

// GetAcademicStandingResult is the academic view of one student.
type GetAcademicStandingResult struct {
	StudentID      string                    `json:"studentId"`
	StudentName    string                    `json:"studentName"`
	OverallAverage float64                   `json:"overallAverage"`
	AtRiskBelow    float64                   `json:"atRiskBelow"`
	Courses        []CourseStandingDTO       `json:"courses"`
	CoursesAtRisk  int                       `json:"coursesAtRisk"`
	Issues         []validation.RecordIssue `json:"issues,omitempty"`
}

// GetAcademicStandingHandler handles the query.
type GetAcademicStandingHandler struct {
	repo        student.Repository
	screener    *validation.Screener
	clock       *timeutil.Clock
	features    Features
	atRiskBelow float64
}

// NewGetAcademicStandingHandler creates the handler.
func NewGetAcademicStandingHandler(
	repo student.Repository,
	screener *validation.Screener,
	clock *timeutil.Clock,
	features Features,
	atRiskBelow float64,
) *GetAcademicStandingHandler {
	return &GetAcademicStandingHandler{
		repo:        repo,
		screener:    screener,
		clock:       clock,
		features:    features,
		atRiskBelow: atRiskBelow,
	}
}

// Handle executes the query.
func (h *GetAcademicStandingHandler) Handle(ctx context.Context, query GetAcademicStandingQuery) (*GetAcademicStandingResult, error) {
	id, err := query.Validate()
	if err != nil {
		return nil, err
	}

	// Courses are not windowed; a one-day window keeps the wellness lists short.
	snap, err := h.repo.LoadSnapshot(ctx, id, wellness.LastDays(h.clock.Now(), 1, h.clock.Location()))
	if err != nil {
		return nil, loadError("GetAcademicStanding", err)
	}

	clean, issues := h.screener.Screen(student.Snapshot{Profile: snap.Profile, Courses: snap.Courses})

	result := &GetAcademicStandingResult{
		StudentID:      snap.Profile.ID.String(),
		StudentName:    snap.Profile.DisplayName(),
		OverallAverage: academic.OverallAcademicAverage(clean.Courses),
		AtRiskBelow:    h.atRiskBelow,
		Courses:        make([]CourseStandingDTO, 0, len(clean.Courses)),
	}
	for _, g := range academic.Grades(clean.Courses, h.atRiskBelow) {
		result.Courses = append(result.Courses, CourseStandingDTO{
			CourseID:    g.Course.ID,
			Name:        g.Course.Name,
			CreditHours: int(g.Course.CreditHours),
			Assessments: len(g.Course.Assessments),
			Percentage:  g.Percentage,
			AtRisk:      g.AtRisk,
		})
		if g.AtRisk {
			result.CoursesAtRisk++
		}
	}
	if enabled(h.features, config.FeatureExposeIssues) {
		result.Issues = issues
	}
	return result, nil
}

// loadError keeps not-found errors recognisable and marks the rest as
// collaborator failures.
func loadError(op string, err error) error {
	if shared.IsNotFound(err) {
		return err
	}
	return shared.WrapError("query", op, shared.ErrServiceUnavailable, "failed to load student records", err)
}
