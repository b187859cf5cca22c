package query

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/toqeer-ahmed/MindMate/internal/domain/academic"
	"github.com/toqeer-ahmed/MindMate/internal/domain/risk"
	"github.com/toqeer-ahmed/MindMate/internal/domain/shared"
	"github.com/toqeer-ahmed/MindMate/internal/domain/student"
	"github.com/toqeer-ahmed/MindMate/internal/domain/wellness"
)

const (
	idAhmed  = "11111111-1111-1111-1111-111111111111"
	idBushra = "22222222-2222-2222-2222-222222222222"
	idChand  = "33333333-3333-3333-3333-333333333333"
	idDanish = "44444444-4444-4444-4444-444444444444"
	idNobody = "99999999-9999-9999-9999-999999999999"
)

var now = time.Date(2025, time.March, 12, 15, 0, 0, 0, time.UTC)

type fakeRepo struct {
	mu        sync.Mutex
	snapshots map[shared.StudentID]student.Snapshot
	failing   map[shared.StudentID]error
	panicking map[shared.StudentID]bool
	listErr   error
	windows   []wellness.Window
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		snapshots: map[shared.StudentID]student.Snapshot{},
		failing:   map[shared.StudentID]error{},
		panicking: map[shared.StudentID]bool{},
	}
}

func (f *fakeRepo) add(s student.Snapshot) {
	f.snapshots[s.Profile.ID] = s
}

func (f *fakeRepo) ListStudents(context.Context) ([]student.Profile, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []student.Profile
	for _, s := range f.snapshots {
		out = append(out, s.Profile)
	}
	for id := range f.failing {
		out = append(out, student.Profile{ID: id, Name: "Chand"})
	}
	for id := range f.panicking {
		out = append(out, student.Profile{ID: id, Name: "Danish"})
	}
	return out, nil
}

func (f *fakeRepo) LoadSnapshot(_ context.Context, id shared.StudentID, w wellness.Window) (student.Snapshot, error) {
	f.mu.Lock()
	f.windows = append(f.windows, w)
	f.mu.Unlock()

	if f.panicking[id] {
		panic("corrupt row")
	}
	if err := f.failing[id]; err != nil {
		return student.Snapshot{}, err
	}
	s, ok := f.snapshots[id]
	if !ok {
		return student.Snapshot{}, shared.ErrStudentNotFound
	}
	return s, nil
}

type flags map[string]bool

func (f flags) IsEnabled(name string) bool { return f[name] }

type fakeStore struct {
	batches map[int]risk.Batch
	stored  int
	err     error
}

func (s *fakeStore) Latest(_ context.Context, windowDays int) (risk.Batch, error) {
	b, ok := s.batches[windowDays]
	if !ok {
		return risk.Batch{}, errors.New("miss")
	}
	return b, nil
}

func (s *fakeStore) Store(_ context.Context, b risk.Batch) error {
	if s.err != nil {
		return s.err
	}
	if s.batches == nil {
		s.batches = map[int]risk.Batch{}
	}
	s.batches[b.WindowDays] = b
	s.stored++
	return nil
}

func moodAt(id string, score int, ts time.Time) wellness.MoodEntry {
	return wellness.MoodEntry{ID: id, MoodScore: wellness.MoodScore(score), Timestamp: ts}
}

func course(id, name string, parts ...[2]float64) academic.Course {
	c := academic.Course{ID: id, Name: name, CreditHours: 3}
	for i, p := range parts {
		c.Assessments = append(c.Assessments, academic.Assessment{
			ID:            id + "-" + string(rune('a'+i)),
			Kind:          academic.KindQuiz,
			TotalMarks:    100,
			ObtainedMarks: p[0],
			Weightage:     academic.Weightage(p[1]),
		})
	}
	return c
}

// seedRoster builds a HIGH student (Ahmed), a LOW student (Bushra), one
// whose records fail to load (Chand) and one whose records panic (Danish).
func seedRoster() *fakeRepo {
	repo := newFakeRepo()
	done := now.Add(-2 * time.Hour)

	repo.add(student.Snapshot{
		Profile: student.Profile{ID: idAhmed, Name: "Ahmed"},
		Courses: []academic.Course{course("c-a", "Physics", [2]float64{40, 100})},
		Moods: []wellness.MoodEntry{
			moodAt("a1", 2, now.Add(-time.Hour)),
			moodAt("a2", 3, now.Add(-26*time.Hour)),
		},
	})
	repo.add(student.Snapshot{
		Profile: student.Profile{ID: idBushra, Name: "Bushra"},
		Courses: []academic.Course{course("c-b", "Chemistry", [2]float64{90, 50}, [2]float64{70, 50})},
		Moods: []wellness.MoodEntry{
			moodAt("b1", 8, now.Add(-time.Hour)),
			moodAt("b2", 8, now.Add(-30*time.Hour)),
			moodAt("b-bad", 42, now.Add(-time.Hour)),
		},
		Tasks: []wellness.Task{{
			ID: "t1", Title: "Lab report", Status: wellness.TaskDone,
			Priority: wellness.PriorityHigh, CompletedAt: &done,
		}},
	})
	repo.failing[idChand] = errors.New("connection reset")
	repo.panicking[idDanish] = true
	return repo
}
