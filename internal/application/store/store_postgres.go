package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"adopsi/internal/application/models"
	id "adopsi/pkg/domain"
	"adopsi/pkg/platform/sentinel"
	"adopsi/pkg/platform/tx"
)

// PostgresStore persists applications in the applications table.
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

const applicationColumns = `
	id, user_id, status,
	full_name, date_of_birth, place_of_birth, address, phone, occupation,
	monthly_income, spouse_name, spouse_occupation, spouse_income,
	number_of_children, reason_for_adoption,
	preferred_child_age_min, preferred_child_age_max, preferred_child_gender,
	admin_notes, reviewed_by, reviewed_at, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, app *models.Application) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO applications (
			id, user_id, status,
			full_name, date_of_birth, place_of_birth, address, phone, occupation,
			monthly_income, spouse_name, spouse_occupation, spouse_income,
			number_of_children, reason_for_adoption,
			preferred_child_age_min, preferred_child_age_max, preferred_child_gender,
			admin_notes, reviewed_by, reviewed_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21, $22, $23
		)`,
		app.ID.String(), app.UserID.String(), app.Status.String(),
		app.FullName, app.DateOfBirth, app.PlaceOfBirth, app.Address, app.Phone, app.Occupation,
		app.MonthlyIncome, app.SpouseName, app.SpouseOccupation, decimalPtr(app.SpouseIncome),
		app.NumberOfChildren, app.ReasonForAdoption,
		app.PreferredChildAgeMin, app.PreferredChildAgeMax, app.PreferredChildGender.String(),
		app.AdminNotes, reviewBy(app.Review), reviewAt(app.Review), app.CreatedAt, app.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, appID id.ApplicationID) (*models.Application, error) {
	row := s.execer(ctx).QueryRowContext(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = $1`,
		appID.String(),
	)
	app, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find application: %w", err)
	}
	return app, nil
}

func (s *PostgresStore) Update(ctx context.Context, app *models.Application) error {
	app.UpdatedAt = time.Now().UTC()
	res, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE applications SET
			status = $2,
			full_name = $3, date_of_birth = $4, place_of_birth = $5,
			address = $6, phone = $7, occupation = $8,
			monthly_income = $9, spouse_name = $10, spouse_occupation = $11, spouse_income = $12,
			number_of_children = $13, reason_for_adoption = $14,
			preferred_child_age_min = $15, preferred_child_age_max = $16, preferred_child_gender = $17,
			admin_notes = $18, reviewed_by = $19, reviewed_at = $20, updated_at = $21
		WHERE id = $1`,
		app.ID.String(), app.Status.String(),
		app.FullName, app.DateOfBirth, app.PlaceOfBirth,
		app.Address, app.Phone, app.Occupation,
		app.MonthlyIncome, app.SpouseName, app.SpouseOccupation, decimalPtr(app.SpouseIncome),
		app.NumberOfChildren, app.ReasonForAdoption,
		app.PreferredChildAgeMin, app.PreferredChildAgeMax, app.PreferredChildGender.String(),
		app.AdminNotes, reviewBy(app.Review), reviewAt(app.Review), app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, q models.ListQuery) ([]*models.Application, error) {
	where, args := listFilter(q)
	args = append(args, q.Limit, q.Offset)
	query := fmt.Sprintf(
		`SELECT %s FROM applications %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		applicationColumns, where, len(args)-1, len(args),
	)

	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var out []*models.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		out = append(out, app)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Count(ctx context.Context, q models.ListQuery) (int, error) {
	where, args := listFilter(q)
	var total int
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT count(*) FROM applications `+where, args...,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count applications: %w", err)
	}
	return total, nil
}

func listFilter(q models.ListQuery) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if q.Status != nil {
		args = append(args, q.Status.String())
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if q.OwnerID != nil {
		args = append(args, q.OwnerID.String())
		clauses = append(clauses, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if len(clauses) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (*models.Application, error) {
	var (
		app          models.Application
		appID        string
		userID       string
		status       string
		gender       string
		spouseIncome sql.NullString
		reviewedBy   sql.NullString
		reviewedAt   sql.NullTime
	)
	err := row.Scan(
		&appID, &userID, &status,
		&app.FullName, &app.DateOfBirth, &app.PlaceOfBirth, &app.Address, &app.Phone, &app.Occupation,
		&app.MonthlyIncome, &app.SpouseName, &app.SpouseOccupation, &spouseIncome,
		&app.NumberOfChildren, &app.ReasonForAdoption,
		&app.PreferredChildAgeMin, &app.PreferredChildAgeMax, &gender,
		&app.AdminNotes, &reviewedBy, &reviewedAt, &app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if app.ID, err = id.ParseApplicationID(appID); err != nil {
		return nil, err
	}
	if app.UserID, err = id.ParseUserID(userID); err != nil {
		return nil, err
	}
	app.Status = models.Status(status)
	app.PreferredChildGender = models.GenderPreference(gender)
	if spouseIncome.Valid {
		d, err := decimal.NewFromString(spouseIncome.String)
		if err != nil {
			return nil, fmt.Errorf("parse spouse income: %w", err)
		}
		app.SpouseIncome = &d
	}
	if reviewedBy.Valid {
		by, err := id.ParseUserID(reviewedBy.String)
		if err != nil {
			return nil, err
		}
		app.Review = &models.ReviewStamp{By: by, At: reviewedAt.Time}
	}
	return &app, nil
}

func decimalPtr(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return *d
}

func reviewBy(r *models.ReviewStamp) any {
	if r == nil {
		return nil
	}
	return r.By.String()
}

func reviewAt(r *models.ReviewStamp) any {
	if r == nil {
		return nil
	}
	return r.At
}
