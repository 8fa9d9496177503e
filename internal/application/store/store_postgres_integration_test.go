//go:build integration

package store_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"adopsi/internal/application/models"
	"adopsi/internal/application/store"
	identitymodels "adopsi/internal/identity/models"
	userstore "adopsi/internal/identity/store"
	id "adopsi/pkg/domain"
	"adopsi/pkg/platform/sentinel"
	"adopsi/pkg/platform/tx"
	"adopsi/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
	users    *userstore.PostgresUserStore
	owner    id.UserID
	reviewer id.UserID
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = store.NewPostgresStore(s.postgres.DB)
	s.users = userstore.NewPostgresUserStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateAll(ctx))

	s.owner = s.seedUser(ctx, "owner@example.com", id.RoleApplicant)
	s.reviewer = s.seedUser(ctx, "reviewer@dinsos.go.id", id.RoleCaseworker)
}

func (s *PostgresStoreSuite) seedUser(ctx context.Context, email string, role id.Role) id.UserID {
	now := time.Now().UTC()
	user := &identitymodels.User{
		ID:           id.NewUserID(),
		Email:        email,
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		FullName:     "Integration User",
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.Require().NoError(s.users.Create(ctx, user))
	return user.ID
}

func (s *PostgresStoreSuite) newApplication(status models.Status) *models.Application {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.Application{
		ID:                   id.NewApplicationID(),
		UserID:               s.owner,
		Status:               status,
		FullName:             "Budi Santoso",
		DateOfBirth:          time.Date(1990, time.March, 12, 0, 0, 0, 0, time.UTC),
		PlaceOfBirth:         "Bandung",
		Address:              "Jl. Merdeka No. 45, Bandung",
		Phone:                "+62-812-0000-1111",
		Occupation:           "Civil servant",
		MonthlyIncome:        decimal.RequireFromString("9500000.00"),
		ReasonForAdoption:    strings.Repeat("We have wanted to raise a child for many years. ", 3),
		PreferredChildAgeMin: 1,
		PreferredChildAgeMax: 5,
		PreferredChildGender: models.GenderNoPreference,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()

	s.Run("persists and reads back every field", func() {
		app := s.newApplication(models.StatusDraft)
		spouseName := "Siti Rahayu"
		spouseIncome := decimal.RequireFromString("4250000.50")
		app.SpouseName = &spouseName
		app.SpouseIncome = &spouseIncome

		s.Require().NoError(s.store.Create(ctx, app))

		found, err := s.store.FindByID(ctx, app.ID)
		s.Require().NoError(err)
		s.Equal(app.ID, found.ID)
		s.Equal(app.UserID, found.UserID)
		s.Equal(models.StatusDraft, found.Status)
		s.True(app.MonthlyIncome.Equal(found.MonthlyIncome))
		s.Require().NotNil(found.SpouseIncome)
		s.True(spouseIncome.Equal(*found.SpouseIncome))
		s.Equal(&spouseName, found.SpouseName)
		s.Nil(found.Review)
	})

	s.Run("round-trips the review stamp", func() {
		app := s.newApplication(models.StatusApproved)
		notes := "All documents verified."
		app.AdminNotes = &notes
		app.Review = &models.ReviewStamp{
			By: s.reviewer,
			At: time.Now().UTC().Truncate(time.Microsecond),
		}
		s.Require().NoError(s.store.Create(ctx, app))

		found, err := s.store.FindByID(ctx, app.ID)
		s.Require().NoError(err)
		s.Require().NotNil(found.Review)
		s.Equal(s.reviewer, found.Review.By)
		s.WithinDuration(app.Review.At, found.Review.At, time.Millisecond)
		s.Equal(&notes, found.AdminNotes)
	})

	s.Run("unknown id returns ErrNotFound", func() {
		_, err := s.store.FindByID(ctx, id.NewApplicationID())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("duplicate id returns ErrConflict", func() {
		app := s.newApplication(models.StatusDraft)
		s.Require().NoError(s.store.Create(ctx, app))
		s.Require().ErrorIs(s.store.Create(ctx, app), sentinel.ErrConflict)
	})
}

func (s *PostgresStoreSuite) TestUpdate() {
	ctx := context.Background()

	s.Run("persists field changes", func() {
		app := s.newApplication(models.StatusDraft)
		s.Require().NoError(s.store.Create(ctx, app))

		app.Status = models.StatusSubmitted
		app.Address = "Jl. Asia Afrika No. 120, Bandung"
		s.Require().NoError(s.store.Update(ctx, app))

		found, err := s.store.FindByID(ctx, app.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusSubmitted, found.Status)
		s.Equal(app.Address, found.Address)
	})

	s.Run("unknown application returns ErrNotFound", func() {
		app := s.newApplication(models.StatusDraft)
		s.Require().ErrorIs(s.store.Update(ctx, app), sentinel.ErrNotFound)
	})
}

func (s *PostgresStoreSuite) TestListAndCount() {
	ctx := context.Background()

	statuses := []models.Status{models.StatusDraft, models.StatusSubmitted, models.StatusSubmitted}
	var created []*models.Application
	for i, status := range statuses {
		app := s.newApplication(status)
		app.CreatedAt = app.CreatedAt.Add(time.Duration(i) * time.Second)
		s.Require().NoError(s.store.Create(ctx, app))
		created = append(created, app)
	}

	s.Run("orders newest first", func() {
		items, err := s.store.List(ctx, models.ListQuery{Limit: 10})
		s.Require().NoError(err)
		s.Require().Len(items, 3)
		s.Equal(created[2].ID, items[0].ID)
	})

	s.Run("filters by status and owner with matching count", func() {
		submitted := models.StatusSubmitted
		q := models.ListQuery{Status: &submitted, OwnerID: &s.owner, Limit: 10}

		items, err := s.store.List(ctx, q)
		s.Require().NoError(err)
		s.Len(items, 2)

		total, err := s.store.Count(ctx, q)
		s.Require().NoError(err)
		s.Equal(2, total)
	})

	s.Run("paginates", func() {
		items, err := s.store.List(ctx, models.ListQuery{Limit: 1, Offset: 1})
		s.Require().NoError(err)
		s.Require().Len(items, 1)
		s.Equal(created[1].ID, items[0].ID)
	})
}

// TestTransactionRollback verifies that writes made through a context-carried
// transaction disappear when the transaction rolls back.
func (s *PostgresStoreSuite) TestTransactionRollback() {
	ctx := context.Background()

	sqlTx, err := s.postgres.DB.BeginTx(ctx, nil)
	s.Require().NoError(err)

	app := s.newApplication(models.StatusDraft)
	s.Require().NoError(s.store.Create(tx.WithTx(ctx, sqlTx), app))
	s.Require().NoError(sqlTx.Rollback())

	_, err = s.store.FindByID(ctx, app.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}
