package history

import (
	"context"

	id "adopsi/pkg/domain"
)

// Store persists ledger entries. Append participates in any transaction
// carried by the context so a status change and its ledger entry commit
// together.
type Store interface {
	Append(ctx context.Context, entry *Entry) error
	// ListByApplication returns the ledger for one application, most
	// recent first.
	ListByApplication(ctx context.Context, applicationID id.ApplicationID) ([]*Entry, error)
}
