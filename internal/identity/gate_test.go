package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adopsi/internal/identity/models"
	identitystore "adopsi/internal/identity/store"
	id "adopsi/pkg/domain"
	dErrors "adopsi/pkg/domain-errors"
)

func addUser(t *testing.T, users *identitystore.InMemoryUserStore, role id.Role, active bool) id.UserID {
	t.Helper()
	user := &models.User{
		ID:        id.NewUserID(),
		Email:     id.NewUserID().String() + "@example.com",
		FullName:  "Gate Test User",
		Role:      role,
		Active:    active,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, users.Create(context.Background(), user))
	return user.ID
}

func TestGateRequireApplicant(t *testing.T) {
	users := identitystore.NewInMemoryUserStore()
	gate := NewGate(users)

	applicant := addUser(t, users, id.RoleApplicant, true)
	caseworker := addUser(t, users, id.RoleCaseworker, true)
	inactive := addUser(t, users, id.RoleApplicant, false)

	t.Run("passes an active applicant through", func(t *testing.T) {
		user, err := gate.RequireApplicant(context.Background(), applicant)
		require.NoError(t, err)
		assert.Equal(t, applicant, user.ID)
	})

	t.Run("missing identity is unauthorized, not forbidden", func(t *testing.T) {
		_, err := gate.RequireApplicant(context.Background(), id.UserID{})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("unknown caller is not found", func(t *testing.T) {
		_, err := gate.RequireApplicant(context.Background(), id.NewUserID())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("recognized wrong role is forbidden", func(t *testing.T) {
		_, err := gate.RequireApplicant(context.Background(), caseworker)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	t.Run("inactive account is forbidden", func(t *testing.T) {
		_, err := gate.RequireApplicant(context.Background(), inactive)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func TestGateRequireCaseworker(t *testing.T) {
	users := identitystore.NewInMemoryUserStore()
	gate := NewGate(users)

	applicant := addUser(t, users, id.RoleApplicant, true)
	caseworker := addUser(t, users, id.RoleCaseworker, true)

	t.Run("passes an active caseworker through", func(t *testing.T) {
		user, err := gate.RequireCaseworker(context.Background(), caseworker)
		require.NoError(t, err)
		assert.Equal(t, caseworker, user.ID)
	})

	t.Run("applicant caller is forbidden", func(t *testing.T) {
		_, err := gate.RequireCaseworker(context.Background(), applicant)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func TestGateCheckReadAccess(t *testing.T) {
	gate := NewGate(identitystore.NewInMemoryUserStore())

	t.Run("applicant reads need a caller id", func(t *testing.T) {
		err := gate.CheckReadAccess(id.RoleApplicant, id.UserID{})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
		assert.NoError(t, gate.CheckReadAccess(id.RoleApplicant, id.NewUserID()))
	})

	t.Run("caseworker reads pass without a caller id", func(t *testing.T) {
		assert.NoError(t, gate.CheckReadAccess(id.RoleCaseworker, id.UserID{}))
	})

	t.Run("unrecognized role is forbidden", func(t *testing.T) {
		err := gate.CheckReadAccess(id.Role("superuser"), id.NewUserID())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}
