package academic

// ══════════════════════════════════════════════════════════════════════════════
// GRADE CALCULATOR
// The single implementation of the weighted course grade. Every consumer
// (academic tracker, advisor report, burnout check) calls into here.
// ══════════════════════════════════════════════════════════════════════════════

const (
	// UngradedPercentage is reported for a course with nothing gradable yet.
	UngradedPercentage = 100.0

	// NoCoursesAverage is reported for a student without enrolled courses.
	NoCoursesAverage = 100.0

	// DefaultAtRiskBelow is the percentage under which a course is flagged.
	DefaultAtRiskBelow = 60.0
)

// CoursePercentage returns the weighted percentage of a course.
//
// Assessments with TotalMarks <= 0 are skipped. The result is normalized by
// the sum of weightages actually present and is not clamped, so extra credit
// can push it above 100. A course without any weight returns UngradedPercentage.
func CoursePercentage(c Course) float64 {
	var weightedSum, weightTotal float64
	for _, a := range c.Assessments {
		if !a.Gradable() {
			continue
		}
		w := float64(a.Weightage)
		weightedSum += a.Percentage() * w
		weightTotal += w
	}
	if weightTotal == 0 {
		return UngradedPercentage
	}
	return weightedSum / weightTotal
}

// OverallAcademicAverage is the unweighted mean of CoursePercentage.
// Credit hours are deliberately not applied.
func OverallAcademicAverage(courses []Course) float64 {
	if len(courses) == 0 {
		return NoCoursesAverage
	}
	var total float64
	for _, c := range courses {
		total += CoursePercentage(c)
	}
	return total / float64(len(courses))
}

// CourseGrade pairs a course with its computed percentage.
type CourseGrade struct {
	Course     Course
	Percentage float64
	AtRisk     bool
}

// Grades computes every course's percentage once, flagging those below atRiskBelow.
func Grades(courses []Course, atRiskBelow float64) []CourseGrade {
	out := make([]CourseGrade, 0, len(courses))
	for _, c := range courses {
		pct := CoursePercentage(c)
		out = append(out, CourseGrade{
			Course:     c,
			Percentage: pct,
			AtRisk:     pct < atRiskBelow,
		})
	}
	return out
}

// CoursesAtRisk returns the courses whose percentage is below atRiskBelow,
// in input order.
func CoursesAtRisk(courses []Course, atRiskBelow float64) []Course {
	var out []Course
	for _, g := range Grades(courses, atRiskBelow) {
		if g.AtRisk {
			out = append(out, g.Course)
		}
	}
	return out
}
