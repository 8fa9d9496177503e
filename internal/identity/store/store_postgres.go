package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"adopsi/internal/identity/models"
	id "adopsi/pkg/domain"
	"adopsi/pkg/platform/sentinel"
)

// uniqueViolation is the pq error code for unique constraint violations.
const uniqueViolation = "23505"

// PostgresUserStore persists users in PostgreSQL.
type PostgresUserStore struct {
	db *sql.DB
}

func NewPostgresUserStore(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

func (s *PostgresUserStore) Create(ctx context.Context, user *models.User) error {
	const query = `
		INSERT INTO users (id, email, password_hash, full_name, phone, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(user.ID), user.Email, user.PasswordHash, user.FullName,
		user.Phone, user.Role.String(), user.Active, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresUserStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	const query = `
		SELECT id, email, password_hash, full_name, phone, role, is_active, created_at, updated_at
		FROM users WHERE id = $1
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, uuid.UUID(userID)))
}

func (s *PostgresUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	const query = `
		SELECT id, email, password_hash, full_name, phone, role, is_active, created_at, updated_at
		FROM users WHERE email = lower($1)
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, email))
}

func (s *PostgresUserStore) scanUser(row *sql.Row) (*models.User, error) {
	var (
		user    models.User
		rawID   uuid.UUID
		rawRole string
	)
	err := row.Scan(&rawID, &user.Email, &user.PasswordHash, &user.FullName,
		&user.Phone, &rawRole, &user.Active, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	user.ID = id.UserID(rawID)
	user.Role = id.Role(rawRole)
	return &user, nil
}
