package store

import (
	"context"

	"adopsi/internal/document/models"
	id "adopsi/pkg/domain"
)

// DocumentStore persists document metadata. The file bytes themselves live
// in the blob store under Document.FileKey.
type DocumentStore interface {
	Create(ctx context.Context, doc *models.Document) error
	FindByID(ctx context.Context, docID id.DocumentID) (*models.Document, error)
	ListByApplication(ctx context.Context, appID id.ApplicationID) ([]*models.Document, error)
	Update(ctx context.Context, doc *models.Document) error
	Delete(ctx context.Context, docID id.DocumentID) error
}
