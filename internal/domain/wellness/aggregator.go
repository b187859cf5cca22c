package wellness

import (
	"sort"
	"time"

	"github.com/toqeer-ahmed/MindMate/internal/domain/shared"
	"github.com/toqeer-ahmed/MindMate/pkg/timeutil"
)

// NoMoodAverage is returned by AverageMood for an empty list. Consumers must
// check the number of samples instead of comparing against this value.
const NoMoodAverage = 0.0

// AverageMood returns the arithmetic mean of the entries' scores.
// Windowing is the caller's concern.
func AverageMood(entries []MoodEntry) float64 {
	if len(entries) == 0 {
		return NoMoodAverage
	}
	var sum int
	for _, e := range entries {
		sum += int(e.MoodScore)
	}
	return float64(sum) / float64(len(entries))
}

// TrendPoint is one point of a mood chart.
type TrendPoint struct {
	Date      shared.Date `json:"date"`
	Timestamp time.Time   `json:"timestamp"`
	Score     float64     `json:"score"`
	Samples   int         `json:"samples"`
}

// MoodTrend returns one point per entry, ascending by timestamp. Entries on
// the same day stay distinct. Equal timestamps keep their input order.
func MoodTrend(entries []MoodEntry, loc *time.Location) []TrendPoint {
	sorted := sortedByTime(entries)
	out := make([]TrendPoint, 0, len(sorted))
	for _, e := range sorted {
		out = append(out, TrendPoint{
			Date:      shared.DateOf(e.Timestamp, loc),
			Timestamp: e.Timestamp,
			Score:     float64(e.MoodScore),
			Samples:   1,
		})
	}
	return out
}

// DailyMoodTrend aggregates entries per calendar day in loc, one point per
// day with the mean score, ascending by date.
func DailyMoodTrend(entries []MoodEntry, loc *time.Location) []TrendPoint {
	var out []TrendPoint
	for _, p := range MoodTrend(entries, loc) {
		n := len(out)
		if n > 0 && out[n-1].Date.Equal(p.Date) {
			last := &out[n-1]
			last.Score = (last.Score*float64(last.Samples) + p.Score) / float64(last.Samples+1)
			last.Samples++
			continue
		}
		p.Timestamp = p.Date.Start(loc)
		out = append(out, p)
	}
	return out
}

// MoodsIn filters entries to those inside w.
func MoodsIn(entries []MoodEntry, w Window) []MoodEntry {
	var out []MoodEntry
	for _, e := range entries {
		if w.Contains(e.Timestamp) {
			out = append(out, e)
		}
	}
	return out
}

// MoodsOn filters entries to those on the given calendar day in loc.
func MoodsOn(entries []MoodEntry, day shared.Date, loc *time.Location) []MoodEntry {
	start := day.Start(loc)
	var out []MoodEntry
	for _, e := range entries {
		if timeutil.IsSameDay(e.Timestamp, start, loc) {
			out = append(out, e)
		}
	}
	return out
}

// LatestMoods returns up to n most recent entries, newest first.
func LatestMoods(entries []MoodEntry, n int) []MoodEntry {
	sorted := sortedByTime(entries)
	if n > len(sorted) {
		n = len(sorted)
	}
	out := make([]MoodEntry, 0, n)
	for i := len(sorted) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, sorted[i])
	}
	return out
}

// JournalsIn filters journal entries created inside w.
func JournalsIn(entries []JournalEntry, w Window) []JournalEntry {
	var out []JournalEntry
	for _, j := range entries {
		if w.Contains(j.CreatedAt) {
			out = append(out, j)
		}
	}
	return out
}

// JournalsOn filters journal entries created on the given day in loc.
func JournalsOn(entries []JournalEntry, day shared.Date, loc *time.Location) []JournalEntry {
	start := day.Start(loc)
	var out []JournalEntry
	for _, j := range entries {
		if timeutil.IsSameDay(j.CreatedAt, start, loc) {
			out = append(out, j)
		}
	}
	return out
}

// TasksOn returns the tasks that belong to a calendar day: those due on it,
// and undated tasks completed on it in loc.
func TasksOn(tasks []Task, day shared.Date, loc *time.Location) []Task {
	var out []Task
	for _, t := range tasks {
		switch {
		case t.DueDate != nil:
			if t.DueDate.Equal(day) {
				out = append(out, t)
			}
		case t.CompletedAt != nil:
			if shared.DateOf(*t.CompletedAt, loc).Equal(day) {
				out = append(out, t)
			}
		}
	}
	return out
}

// CompletedIn returns DONE tasks completed inside w. When the completion time
// was not recorded, the start of the due date in loc stands in for it.
func CompletedIn(tasks []Task, w Window, loc *time.Location) []Task {
	var out []Task
	for _, t := range tasks {
		if !t.Done() {
			continue
		}
		switch {
		case t.CompletedAt != nil:
			if w.Contains(*t.CompletedAt) {
				out = append(out, t)
			}
		case t.DueDate != nil:
			if w.Contains(t.DueDate.Start(loc)) {
				out = append(out, t)
			}
		}
	}
	return out
}

func sortedByTime(entries []MoodEntry) []MoodEntry {
	sorted := make([]MoodEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return sorted
}
