// Package query contains the read operations of MindMate (CQRS - Queries).
//
// Every handler loads a record snapshot through student.Repository, screens
// it, and runs the pure scoring engine over the clean records. Nothing here
// writes student data.
package query

import (
	"github.com/toqeer-ahmed/MindMate/config"
)

// Features reports whether an optional behaviour is switched on.
// *config.FeatureFlags satisfies it.
type Features interface {
	IsEnabled(name string) bool
}

var _ Features = (*config.FeatureFlags)(nil)

func enabled(f Features, name string) bool {
	return f != nil && f.IsEnabled(name)
}
