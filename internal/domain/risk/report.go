package risk

import (
	"time"

	"github.com/toqeer-ahmed/MindMate/internal/domain/academic"
	"github.com/toqeer-ahmed/MindMate/internal/domain/wellness"
)

// StudentWellnessReport is the derived advisor-portal row of one student.
// It is recomputed on every request and never persisted as a source of truth.
type StudentWellnessReport struct {
	StudentID        string  `json:"studentId"`
	StudentName      string  `json:"studentName"`
	AverageMoodScore float64 `json:"averageMoodScore"`
	MoodSamples      int     `json:"moodSamples"`
	JournalCount     int     `json:"journalCount"`
	TasksCompleted   int     `json:"tasksCompleted"`
	RiskLevel        Level   `json:"riskLevel"`
	WindowDays       int     `json:"windowDays"`
	AcademicAverage  float64 `json:"academicAverage"`
	BurnoutSuspected bool    `json:"burnoutSuspected"`
	// DataIncomplete is set when records failed to load or were dropped.
	DataIncomplete   bool    `json:"dataIncomplete"`
	Issues           int     `json:"issues,omitempty"`
}

// Input is one student's record snapshot for a report window.
type Input struct {
	StudentID   string
	StudentName string
	Courses     []academic.Course
	Moods       []wellness.MoodEntry
	Tasks       []wellness.Task
	Journals    []wellness.JournalEntry
	// RecentMoods feed burnout detection. Nil falls back to Moods.
	RecentMoods []wellness.MoodEntry
	Window      wellness.Window
}

func (in Input) burnoutMoods() []wellness.MoodEntry {
	if in.RecentMoods != nil {
		return in.RecentMoods
	}
	return in.Moods
}

// Assessor builds wellness reports from record snapshots.
type Assessor struct {
	classifier *Classifier
	burnout    BurnoutPolicy
	loc        *time.Location
}

// NewAssessor creates an Assessor. loc decides calendar days for tasks that
// only carry a due date.
func NewAssessor(c *Classifier, burnout BurnoutPolicy, loc *time.Location) *Assessor {
	if c == nil {
		c = NewClassifier(DefaultPolicy())
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Assessor{classifier: c, burnout: burnout, loc: loc}
}

// Classifier returns the classifier the assessor uses.
func (a *Assessor) Classifier() *Classifier {
	return a.classifier
}

// Assess aggregates the window and classifies the student.
func (a *Assessor) Assess(in Input) StudentWellnessReport {
	moods := wellness.MoodsIn(in.Moods, in.Window)
	signals := Signals{
		AverageMoodScore: wellness.AverageMood(moods),
		MoodSamples:      len(moods),
		JournalCount:     len(wellness.JournalsIn(in.Journals, in.Window)),
		TasksCompleted:   len(wellness.CompletedIn(in.Tasks, in.Window, a.loc)),
		WindowDays:       in.Window.Days(),
	}

	return StudentWellnessReport{
		StudentID:        in.StudentID,
		StudentName:      in.StudentName,
		AverageMoodScore: signals.AverageMoodScore,
		MoodSamples:      signals.MoodSamples,
		JournalCount:     signals.JournalCount,
		TasksCompleted:   signals.TasksCompleted,
		RiskLevel:        a.classifier.Classify(signals),
		WindowDays:       signals.WindowDays,
		AcademicAverage:  academic.OverallAcademicAverage(in.Courses),
		BurnoutSuspected: DetectBurnout(in.burnoutMoods(), in.Courses, a.burnout).Suspected(),
	}
}

// Fallback returns the row shown for a student whose records could not be
// loaded: default values, the classification of empty signals, and the
// data-incomplete marker.
func (a *Assessor) Fallback(studentID, studentName string, windowDays int) StudentWellnessReport {
	return StudentWellnessReport{
		StudentID:       studentID,
		StudentName:     studentName,
		RiskLevel:       a.classifier.Classify(Signals{WindowDays: windowDays}),
		WindowDays:      windowDays,
		AcademicAverage: academic.NoCoursesAverage,
		DataIncomplete:  true,
	}
}
