// Package history keeps the append-only status ledger. Every status change
// an application goes through is recorded with who made it, the statuses on
// both sides of the transition, and an optional note. Entries are never
// updated or deleted.
package history

import (
	"time"

	appmodels "adopsi/internal/application/models"
	id "adopsi/pkg/domain"
)

// Entry is one recorded status transition. OldStatus is nil only for entries
// that predate the transition being recorded, it is always set by Append
// callers in this codebase.
type Entry struct {
	ID            int64
	ApplicationID id.ApplicationID
	OldStatus     *appmodels.Status
	NewStatus     appmodels.Status
	ChangedBy     id.UserID
	Notes         *string
	CreatedAt     time.Time
}
