package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"adopsi/internal/identity/models"
	id "adopsi/pkg/domain"
	"adopsi/pkg/platform/sentinel"
)

type UserStoreSuite struct {
	suite.Suite
	store *InMemoryUserStore
}

func (s *UserStoreSuite) SetupTest() {
	s.store = NewInMemoryUserStore()
}

func TestUserStoreSuite(t *testing.T) {
	suite.Run(t, new(UserStoreSuite))
}

func newUser(email string, role id.Role) *models.User {
	now := time.Now().UTC()
	return &models.User{
		ID:           id.NewUserID(),
		Email:        email,
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		FullName:     "Budi Santoso",
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (s *UserStoreSuite) TestCreate() {
	s.Run("stores the user", func() {
		user := newUser("budi@example.com", id.RoleApplicant)
		s.Require().NoError(s.store.Create(context.Background(), user))

		found, err := s.store.FindByID(context.Background(), user.ID)
		s.Require().NoError(err)
		s.Equal(user, found)
	})

	s.Run("duplicate email returns ErrConflict", func() {
		first := newUser("dupe@example.com", id.RoleApplicant)
		second := newUser("dupe@example.com", id.RoleCaseworker)
		s.Require().NoError(s.store.Create(context.Background(), first))
		s.Require().ErrorIs(s.store.Create(context.Background(), second), sentinel.ErrConflict)
	})

	s.Run("email uniqueness is case insensitive", func() {
		first := newUser("case@example.com", id.RoleApplicant)
		second := newUser("CASE@example.com", id.RoleApplicant)
		s.Require().NoError(s.store.Create(context.Background(), first))
		s.Require().ErrorIs(s.store.Create(context.Background(), second), sentinel.ErrConflict)
	})
}

func (s *UserStoreSuite) TestLookup() {
	s.Run("finds by email regardless of case", func() {
		user := newUser("siti@example.com", id.RoleCaseworker)
		s.Require().NoError(s.store.Create(context.Background(), user))

		found, err := s.store.FindByEmail(context.Background(), "Siti@Example.COM")
		s.Require().NoError(err)
		s.Equal(user.ID, found.ID)
	})

	s.Run("unknown id returns ErrNotFound", func() {
		_, err := s.store.FindByID(context.Background(), id.NewUserID())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("unknown email returns ErrNotFound", func() {
		_, err := s.store.FindByEmail(context.Background(), "ghost@example.com")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}
