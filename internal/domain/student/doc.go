// Package student describes a student as the scoring engine sees them: a
// roster profile plus a read-only snapshot of the records owned by the
// surrounding application.
//
// The engine never writes these records. Mood entries, tasks, journal
// entries and graded courses are created and edited elsewhere; this package
// only defines the shape they are read in and the port they are read through.
//
// # Snapshots
//
// A Snapshot bundles every record list of one student so that the pure
// domain functions can be applied without further I/O:
//
//	snap, err := repo.LoadSnapshot(ctx, id, wellness.LastDays(now, 7, loc))
//	if err != nil {
//	    return err
//	}
//	report := assessor.Assess(snap.RiskInput(window))
//
// # Repository
//
// Repository is implemented in infrastructure/persistence. Implementations
// return shared.ErrStudentNotFound for unknown ids and must be safe for
// concurrent use, since advisor reports load many students in parallel.
package student
