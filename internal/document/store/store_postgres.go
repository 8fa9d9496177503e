package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"adopsi/internal/document/models"
	id "adopsi/pkg/domain"
	"adopsi/pkg/platform/sentinel"
	"adopsi/pkg/platform/tx"
)

// PostgresStore persists document metadata in the documents table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *PostgresStore) execer(ctx context.Context) execer {
	if t, ok := tx.From(ctx); ok {
		return t
	}
	return s.db
}

const documentColumns = `
	id, application_id, document_type, file_name, file_path, file_size,
	mime_type, verified_by, verified_at, uploaded_at`

func (s *PostgresStore) Create(ctx context.Context, doc *models.Document) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO documents (
			id, application_id, document_type, file_name, file_path, file_size,
			mime_type, is_verified, verified_by, verified_at, uploaded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		doc.ID.String(), doc.ApplicationID.String(), doc.Type.String(),
		doc.FileName, doc.FileKey, doc.FileSize,
		doc.MimeType, doc.Verified != nil, verifiedBy(doc.Verified), verifiedAt(doc.Verified),
		doc.UploadedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, docID id.DocumentID) (*models.Document, error) {
	row := s.execer(ctx).QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = $1`,
		docID.String(),
	)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find document: %w", err)
	}
	return doc, nil
}

func (s *PostgresStore) ListByApplication(ctx context.Context, appID id.ApplicationID) ([]*models.Document, error) {
	rows, err := s.execer(ctx).QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents
		 WHERE application_id = $1
		 ORDER BY uploaded_at ASC, id ASC`,
		appID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var out []*models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Update(ctx context.Context, doc *models.Document) error {
	res, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE documents SET
			document_type = $2, file_name = $3, file_path = $4, file_size = $5,
			mime_type = $6, is_verified = $7, verified_by = $8, verified_at = $9
		WHERE id = $1`,
		doc.ID.String(), doc.Type.String(), doc.FileName, doc.FileKey, doc.FileSize,
		doc.MimeType, doc.Verified != nil, verifiedBy(doc.Verified), verifiedAt(doc.Verified),
	)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, docID id.DocumentID) error {
	res, err := s.execer(ctx).ExecContext(ctx,
		`DELETE FROM documents WHERE id = $1`, docID.String(),
	)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*models.Document, error) {
	var (
		doc        models.Document
		docID      string
		appID      string
		docType    string
		verifiedBy sql.NullString
		verifiedAt sql.NullTime
	)
	err := row.Scan(
		&docID, &appID, &docType, &doc.FileName, &doc.FileKey, &doc.FileSize,
		&doc.MimeType, &verifiedBy, &verifiedAt, &doc.UploadedAt,
	)
	if err != nil {
		return nil, err
	}
	if doc.ID, err = id.ParseDocumentID(docID); err != nil {
		return nil, err
	}
	if doc.ApplicationID, err = id.ParseApplicationID(appID); err != nil {
		return nil, err
	}
	doc.Type = models.Type(docType)
	if verifiedBy.Valid {
		by, err := id.ParseUserID(verifiedBy.String)
		if err != nil {
			return nil, err
		}
		doc.Verified = &models.VerifyStamp{By: by, At: verifiedAt.Time}
	}
	return &doc, nil
}

func verifiedBy(v *models.VerifyStamp) any {
	if v == nil {
		return nil
	}
	return v.By.String()
}

func verifiedAt(v *models.VerifyStamp) any {
	if v == nil {
		return nil
	}
	return v.At
}
