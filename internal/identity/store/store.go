// Package store persists users. Implementations return pkg/platform/sentinel
// errors; services translate them into domain errors.
package store

import (
	"context"

	"adopsi/internal/identity/models"
	id "adopsi/pkg/domain"
)

// UserStore is the user directory consumed by the role gate and the auth
// service.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}
