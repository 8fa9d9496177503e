package history

import (
	"context"
	"database/sql"
	"fmt"

	appmodels "adopsi/internal/application/models"
	id "adopsi/pkg/domain"
	"adopsi/pkg/platform/tx"
)

// PostgresStore persists ledger entries in application_status_history.
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

func (s *PostgresStore) Append(ctx context.Context, entry *Entry) error {
	var oldStatus sql.NullString
	if entry.OldStatus != nil {
		oldStatus = sql.NullString{String: entry.OldStatus.String(), Valid: true}
	}

	err := s.execer(ctx).QueryRowContext(ctx, `
		INSERT INTO application_status_history
			(application_id, old_status, new_status, changed_by, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		entry.ApplicationID.String(), oldStatus, entry.NewStatus.String(),
		entry.ChangedBy.String(), entry.Notes,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("append status history: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByApplication(ctx context.Context, applicationID id.ApplicationID) ([]*Entry, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT id, application_id, old_status, new_status, changed_by, notes, created_at
		FROM application_status_history
		WHERE application_id = $1
		ORDER BY created_at DESC, id DESC`,
		applicationID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list status history: %w", err)
	}
	defer rows.Close()

	var out []*Entry
	for rows.Next() {
		var (
			e         Entry
			appID     string
			changedBy string
			oldStatus sql.NullString
			newStatus string
		)
		if err := rows.Scan(&e.ID, &appID, &oldStatus, &newStatus, &changedBy, &e.Notes, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan status history: %w", err)
		}
		if e.ApplicationID, err = id.ParseApplicationID(appID); err != nil {
			return nil, err
		}
		if e.ChangedBy, err = id.ParseUserID(changedBy); err != nil {
			return nil, err
		}
		if oldStatus.Valid {
			st := appmodels.Status(oldStatus.String)
			e.OldStatus = &st
		}
		e.NewStatus = appmodels.Status(newStatus)
		out = append(out, &e)
	}
	return out, rows.Err()
}
