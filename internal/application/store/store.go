package store

import (
	"context"

	"adopsi/internal/application/models"
	id "adopsi/pkg/domain"
)

// ApplicationStore persists application aggregates. Reads and writes are
// whole-record; callers mutate a loaded aggregate and pass it back to Update.
// Implementations participate in any transaction carried by the context.
type ApplicationStore interface {
	Create(ctx context.Context, app *models.Application) error
	FindByID(ctx context.Context, appID id.ApplicationID) (*models.Application, error)
	Update(ctx context.Context, app *models.Application) error
	List(ctx context.Context, q models.ListQuery) ([]*models.Application, error)
	Count(ctx context.Context, q models.ListQuery) (int, error)
}

// TxRunner runs fn inside a storage transaction. The transaction rides the
// context, so stores called from fn join it automatically. A non-nil error
// from fn rolls everything back.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// NopTxRunner runs fn without transactional guarantees. It backs the
// in-memory stores, where each operation is already atomic.
type NopTxRunner struct{}

func (NopTxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
