// Package wellness holds mood, task and journal records of a student and
// the aggregations computed over them.
package wellness

import (
	"time"

	"github.com/toqeer-ahmed/MindMate/internal/domain/shared"
	"github.com/toqeer-ahmed/MindMate/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// MOOD
// ══════════════════════════════════════════════════════════════════════════════

const (
	MinMoodScore = 1
	MaxMoodScore = 10
)

// MoodScore is a self-reported or detected mood on a 1..10 scale.
type MoodScore int

// NewMoodScore validates a raw mood score.
func NewMoodScore(v int) (MoodScore, error) {
	if v < MinMoodScore || v > MaxMoodScore {
		return 0, shared.ErrInvalidMoodScore
	}
	return MoodScore(v), nil
}

// MoodEntry is immutable after creation. Entries come from manual input or
// from the external mood-detection service.
type MoodEntry struct {
	ID        string    `json:"id" validate:"required"`
	StudentID string    `json:"studentId"`
	MoodScore MoodScore `json:"moodScore" validate:"min=1,max=10"`
	MoodLabel string    `json:"moodLabel"`
	Note      *string   `json:"note,omitempty"`
	Timestamp time.Time `json:"timestamp" validate:"required"`
}

// ══════════════════════════════════════════════════════════════════════════════
// TASKS
// ══════════════════════════════════════════════════════════════════════════════

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "TODO"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskDone       TaskStatus = "DONE"
)

// TaskPriority is the importance of a task.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
)

// Task is a student's to-do item. DueDate is a calendar day; CompletedAt is
// set when the task was moved to DONE, if the collaborator recorded it.
type Task struct {
	ID          string       `json:"id" validate:"required"`
	StudentID   string       `json:"studentId"`
	Title       string       `json:"title" validate:"required"`
	Status      TaskStatus   `json:"status" validate:"oneof=TODO IN_PROGRESS DONE"`
	Priority    TaskPriority `json:"priority" validate:"oneof=LOW MEDIUM HIGH"`
	DueDate     *shared.Date `json:"dueDate,omitempty"`
	CompletedAt *time.Time   `json:"completedAt,omitempty"`
}

// Done reports whether the task is completed.
func (t Task) Done() bool {
	return t.Status == TaskDone
}

// ══════════════════════════════════════════════════════════════════════════════
// JOURNAL
// ══════════════════════════════════════════════════════════════════════════════

// JournalEntry is a free-form journal note.
type JournalEntry struct {
	ID        string    `json:"id" validate:"required"`
	StudentID string    `json:"studentId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	MoodTag   string    `json:"moodTag"`
	CreatedAt time.Time `json:"createdAt" validate:"required"`
}

// ══════════════════════════════════════════════════════════════════════════════
// WINDOW
// ══════════════════════════════════════════════════════════════════════════════

// Window is an inclusive time range used to bound aggregations.
type Window struct {
	From time.Time
	To   time.Time
}

// DayWindow covers the single calendar day d in loc.
func DayWindow(d shared.Date, loc *time.Location) Window {
	start := d.Start(loc)
	return Window{From: start, To: timeutil.EndOfDay(start, loc)}
}

// LastDays returns the window of the given number of calendar days in loc
// that ends with asOf's day. Fewer than one day means asOf's day only.
func LastDays(asOf time.Time, days int, loc *time.Location) Window {
	if days < 1 {
		days = 1
	}
	if loc == nil {
		loc = time.UTC
	}
	first := shared.DateOf(timeutil.StartOfDay(asOf, loc), loc).AddDays(-(days - 1))
	return Window{From: first.Start(loc), To: timeutil.EndOfDay(asOf, loc)}
}

// Contains reports whether t lies in the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && !t.After(w.To)
}

// Days returns the number of calendar days the window touches, counted in
// the location of its start.
func (w Window) Days() int {
	if w.From.IsZero() && w.To.IsZero() {
		return 0
	}
	return timeutil.DaysBetween(w.From, w.To, w.From.Location()) + 1
}
