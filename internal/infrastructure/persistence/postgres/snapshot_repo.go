package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/toqeer-ahmed/MindMate/internal/domain/academic"
	"github.com/toqeer-ahmed/MindMate/internal/domain/risk"
	"github.com/toqeer-ahmed/MindMate/internal/domain/shared"
	"github.com/toqeer-ahmed/MindMate/internal/domain/student"
	"github.com/toqeer-ahmed/MindMate/internal/domain/wellness"
)

// ══════════════════════════════════════════════════════════════════════════════
// SNAPSHOT REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// SnapshotRepository implements student.Repository for PostgreSQL.
type SnapshotRepository struct {
	conn *Connection
	// dayPadding widens date-only filters so that calendar days in any
	// timezone are fully covered; the domain filters precisely afterwards.
	dayPadding  time.Duration
	recentMoods int
}

// NewSnapshotRepository creates a new SnapshotRepository.
func NewSnapshotRepository(conn *Connection) *SnapshotRepository {
	return &SnapshotRepository{
		conn:        conn,
		dayPadding:  24 * time.Hour,
		recentMoods: risk.DefaultBurnoutPolicy().RecentMoods,
	}
}

// WithRecentMoods sets how many of the latest mood entries are loaded
// regardless of the window. Zero disables the extra read.
func (r *SnapshotRepository) WithRecentMoods(n int) *SnapshotRepository {
	if n < 0 {
		n = 0
	}
	r.recentMoods = n
	return r
}

var _ student.Repository = (*SnapshotRepository)(nil)

// ListStudents returns the roster ordered by name.
func (r *SnapshotRepository) ListStudents(ctx context.Context) ([]student.Profile, error) {
	rows, err := r.conn.Query(ctx, `SELECT id::text, name FROM students ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	defer rows.Close()

	var out []student.Profile
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		out = append(out, student.Profile{ID: shared.StudentID(id), Name: name})
	}
	return out, rows.Err()
}

// LoadSnapshot reads all record lists of a student inside one read-only
// repeatable-read transaction. A zero window loads every record.
func (r *SnapshotRepository) LoadSnapshot(ctx context.Context, id shared.StudentID, w wellness.Window) (student.Snapshot, error) {
	var snap student.Snapshot

	from, to := r.bounds(w)
	err := r.conn.WithTx(ctx, SnapshotTxOptions(), func(tx pgx.Tx) error {
		var err error
		if snap.Profile, err = getProfile(ctx, tx, id); err != nil {
			return err
		}
		if snap.Courses, err = loadCourses(ctx, tx, id); err != nil {
			return err
		}
		if snap.Moods, err = loadMoods(ctx, tx, id, from, to); err != nil {
			return err
		}
		if r.recentMoods > 0 {
			if snap.RecentMoods, err = loadRecentMoods(ctx, tx, id, r.recentMoods); err != nil {
				return err
			}
		}
		if snap.Tasks, err = loadTasks(ctx, tx, id, from, to); err != nil {
			return err
		}
		snap.Journals, err = loadJournals(ctx, tx, id, from, to)
		return err
	})
	if err != nil {
		return student.Snapshot{}, err
	}
	return snap, nil
}

func (r *SnapshotRepository) bounds(w wellness.Window) (time.Time, time.Time) {
	if w.From.IsZero() && w.To.IsZero() {
		return time.Unix(0, 0).UTC(), time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
	}
	return w.From.Add(-r.dayPadding), w.To.Add(r.dayPadding)
}

// ─────────────────────────────────────────────────────────────────────────────
// Queries
// ─────────────────────────────────────────────────────────────────────────────

func getProfile(ctx context.Context, q Querier, id shared.StudentID) (student.Profile, error) {
	var p student.Profile
	var sid string
	err := q.QueryRow(ctx, `SELECT id::text, name FROM students WHERE id = $1`, id.String()).Scan(&sid, &p.Name)
	if err != nil {
		if IsNoRows(err) || IsInvalidTextRepresentation(err) {
			return student.Profile{}, shared.ErrStudentNotFound
		}
		return student.Profile{}, fmt.Errorf("failed to get student: %w", err)
	}
	p.ID = shared.StudentID(sid)
	return p, nil
}

type assessmentRow struct {
	CourseID   string
	Assessment academic.Assessment
}

func loadCourses(ctx context.Context, q Querier, id shared.StudentID) ([]academic.Course, error) {
	rows, err := q.Query(ctx, `
		SELECT id::text, name, credit_hours
		FROM courses
		WHERE student_id = $1
		ORDER BY name, id
	`, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	courses, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (academic.Course, error) {
		var c academic.Course
		var credits int
		err := row.Scan(&c.ID, &c.Name, &credits)
		c.CreditHours = academic.CreditHours(credits)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan courses: %w", err)
	}

	rows, err = q.Query(ctx, `
		SELECT a.course_id::text, a.id::text, a.kind, a.name, a.total_marks, a.obtained_marks, a.weightage
		FROM assessments a
		JOIN courses c ON c.id = a.course_id
		WHERE c.student_id = $1
		ORDER BY a.course_id, a.position, a.id
	`, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query assessments: %w", err)
	}
	assessments, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (assessmentRow, error) {
		var ar assessmentRow
		var kind string
		var weightage float64
		a := &ar.Assessment
		err := row.Scan(&ar.CourseID, &a.ID, &kind, &a.Name, &a.TotalMarks, &a.ObtainedMarks, &weightage)
		a.Kind = academic.AssessmentKind(kind)
		a.Weightage = academic.Weightage(weightage)
		return ar, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan assessments: %w", err)
	}

	return attachAssessments(courses, assessments), nil
}

// attachAssessments distributes rows to their courses, keeping row order.
// Rows of unknown courses are dropped.
func attachAssessments(courses []academic.Course, rows []assessmentRow) []academic.Course {
	index := make(map[string]int, len(courses))
	for i := range courses {
		index[courses[i].ID] = i
	}
	for _, r := range rows {
		if i, ok := index[r.CourseID]; ok {
			courses[i].Assessments = append(courses[i].Assessments, r.Assessment)
		}
	}
	return courses
}

func loadMoods(ctx context.Context, q Querier, id shared.StudentID, from, to time.Time) ([]wellness.MoodEntry, error) {
	rows, err := q.Query(ctx, `
		SELECT id::text, student_id::text, mood_score, mood_label, note, recorded_at
		FROM mood_entries
		WHERE student_id = $1 AND recorded_at BETWEEN $2 AND $3
		ORDER BY recorded_at, id
	`, id.String(), from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query mood entries: %w", err)
	}
	return collectMoods(rows)
}

// loadRecentMoods returns the latest n entries, newest first.
func loadRecentMoods(ctx context.Context, q Querier, id shared.StudentID, n int) ([]wellness.MoodEntry, error) {
	rows, err := q.Query(ctx, `
		SELECT id::text, student_id::text, mood_score, mood_label, note, recorded_at
		FROM mood_entries
		WHERE student_id = $1
		ORDER BY recorded_at DESC, id DESC
		LIMIT $2
	`, id.String(), n)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent mood entries: %w", err)
	}
	return collectMoods(rows)
}

func collectMoods(rows pgx.Rows) ([]wellness.MoodEntry, error) {
	moods, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (wellness.MoodEntry, error) {
		var m wellness.MoodEntry
		var score int
		err := row.Scan(&m.ID, &m.StudentID, &score, &m.MoodLabel, &m.Note, &m.Timestamp)
		m.MoodScore = wellness.MoodScore(score)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan mood entries: %w", err)
	}
	return moods, nil
}

func loadTasks(ctx context.Context, q Querier, id shared.StudentID, from, to time.Time) ([]wellness.Task, error) {
	rows, err := q.Query(ctx, `
		SELECT id::text, student_id::text, title, status, priority, due_date, completed_at
		FROM tasks
		WHERE student_id = $1
		  AND (due_date BETWEEN $4::date AND $5::date OR completed_at BETWEEN $2 AND $3)
		ORDER BY due_date NULLS LAST, id
	`, id.String(), from, to, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	tasks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (wellness.Task, error) {
		var t wellness.Task
		var status, priority string
		var due *time.Time
		err := row.Scan(&t.ID, &t.StudentID, &t.Title, &status, &priority, &due, &t.CompletedAt)
		t.Status = wellness.TaskStatus(status)
		t.Priority = wellness.TaskPriority(priority)
		if due != nil {
			d := shared.DateOf(*due, time.UTC)
			t.DueDate = &d
		}
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan tasks: %w", err)
	}
	return tasks, nil
}

func loadJournals(ctx context.Context, q Querier, id shared.StudentID, from, to time.Time) ([]wellness.JournalEntry, error) {
	rows, err := q.Query(ctx, `
		SELECT id::text, student_id::text, title, content, mood_tag, created_at
		FROM journal_entries
		WHERE student_id = $1 AND created_at BETWEEN $2 AND $3
		ORDER BY created_at, id
	`, id.String(), from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal entries: %w", err)
	}
	journals, err := pgx.CollectRows(rows, pgx.RowToStructByPos[wellness.JournalEntry])
	if err != nil {
		return nil, fmt.Errorf("failed to scan journal entries: %w", err)
	}
	return journals, nil
}
