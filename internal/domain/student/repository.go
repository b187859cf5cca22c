package student

import (
	"context"

	"github.com/toqeer-ahmed/MindMate/internal/domain/shared"
	"github.com/toqeer-ahmed/MindMate/internal/domain/wellness"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Implementations live in infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository reads student records. It never mutates them.
type Repository interface {
	// ListStudents returns the roster ordered by name.
	ListStudents(ctx context.Context) ([]Profile, error)

	// LoadSnapshot returns the student's courses plus the mood entries,
	// journal entries and tasks relevant to w. Implementations may return
	// more records than w covers; callers filter again. RecentMoods may be
	// left nil.
	// Returns shared.ErrStudentNotFound if the student does not exist.
	LoadSnapshot(ctx context.Context, id shared.StudentID, w wellness.Window) (Snapshot, error)
}
