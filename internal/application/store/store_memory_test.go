package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"adopsi/internal/application/models"
	id "adopsi/pkg/domain"
	"adopsi/pkg/platform/sentinel"
)

type ApplicationStoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func (s *ApplicationStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
}

func TestApplicationStoreSuite(t *testing.T) {
	suite.Run(t, new(ApplicationStoreSuite))
}

func newApplication(owner id.UserID, status models.Status, createdAt time.Time) *models.Application {
	return &models.Application{
		ID:                   id.NewApplicationID(),
		UserID:               owner,
		Status:               status,
		FullName:             "Budi Santoso",
		DateOfBirth:          time.Date(1990, time.March, 12, 0, 0, 0, 0, time.UTC),
		PlaceOfBirth:         "Bandung",
		Address:              "Jl. Merdeka No. 45, Bandung",
		Phone:                "+62-812-0000-1111",
		Occupation:           "Civil servant",
		MonthlyIncome:        decimal.NewFromInt(9_500_000),
		ReasonForAdoption:    strings.Repeat("We have wanted to raise a child for many years. ", 3),
		PreferredChildAgeMax: 5,
		PreferredChildGender: models.GenderNoPreference,
		CreatedAt:            createdAt,
		UpdatedAt:            createdAt,
	}
}

func (s *ApplicationStoreSuite) TestLookup() {
	s.Run("returns the stored application", func() {
		app := newApplication(id.NewUserID(), models.StatusDraft, time.Now().UTC())
		s.Require().NoError(s.store.Create(context.Background(), app))

		found, err := s.store.FindByID(context.Background(), app.ID)
		s.Require().NoError(err)
		s.Equal(app, found)
	})

	s.Run("returns ErrNotFound for an unknown id", func() {
		_, err := s.store.FindByID(context.Background(), id.NewApplicationID())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("duplicate create returns ErrConflict", func() {
		app := newApplication(id.NewUserID(), models.StatusDraft, time.Now().UTC())
		s.Require().NoError(s.store.Create(context.Background(), app))
		s.Require().ErrorIs(s.store.Create(context.Background(), app), sentinel.ErrConflict)
	})

	s.Run("reads are isolated from later caller mutation", func() {
		app := newApplication(id.NewUserID(), models.StatusDraft, time.Now().UTC())
		s.Require().NoError(s.store.Create(context.Background(), app))

		found, err := s.store.FindByID(context.Background(), app.ID)
		s.Require().NoError(err)
		found.FullName = "changed"

		again, err := s.store.FindByID(context.Background(), app.ID)
		s.Require().NoError(err)
		s.Equal("Budi Santoso", again.FullName)
	})
}

func (s *ApplicationStoreSuite) TestUpdate() {
	s.Run("persists changed fields and bumps UpdatedAt", func() {
		app := newApplication(id.NewUserID(), models.StatusDraft, time.Now().UTC().Add(-time.Hour))
		s.Require().NoError(s.store.Create(context.Background(), app))

		app.Status = models.StatusSubmitted
		s.Require().NoError(s.store.Update(context.Background(), app))

		found, err := s.store.FindByID(context.Background(), app.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusSubmitted, found.Status)
		s.True(found.UpdatedAt.After(found.CreatedAt))
	})

	s.Run("update on an unknown application returns ErrNotFound", func() {
		app := newApplication(id.NewUserID(), models.StatusDraft, time.Now().UTC())
		s.Require().ErrorIs(s.store.Update(context.Background(), app), sentinel.ErrNotFound)
	})
}

func (s *ApplicationStoreSuite) TestListAndCount() {
	ownerA := id.NewUserID()
	ownerB := id.NewUserID()
	base := time.Now().UTC().Add(-time.Hour)

	seed := []*models.Application{
		newApplication(ownerA, models.StatusDraft, base),
		newApplication(ownerA, models.StatusSubmitted, base.Add(time.Minute)),
		newApplication(ownerB, models.StatusSubmitted, base.Add(2*time.Minute)),
		newApplication(ownerB, models.StatusApproved, base.Add(3*time.Minute)),
	}
	for _, app := range seed {
		s.Require().NoError(s.store.Create(context.Background(), app))
	}

	s.Run("orders newest first", func() {
		q := models.ListQuery{Limit: 10}
		items, err := s.store.List(context.Background(), q)
		s.Require().NoError(err)
		s.Require().Len(items, 4)
		s.Equal(seed[3].ID, items[0].ID)
		s.Equal(seed[0].ID, items[3].ID)
	})

	s.Run("filters by status and owner", func() {
		submitted := models.StatusSubmitted
		q := models.ListQuery{Status: &submitted, OwnerID: &ownerA, Limit: 10}
		items, err := s.store.List(context.Background(), q)
		s.Require().NoError(err)
		s.Require().Len(items, 1)
		s.Equal(seed[1].ID, items[0].ID)

		total, err := s.store.Count(context.Background(), q)
		s.Require().NoError(err)
		s.Equal(1, total)
	})

	s.Run("paginates with limit and offset", func() {
		q := models.ListQuery{Limit: 2, Offset: 2}
		items, err := s.store.List(context.Background(), q)
		s.Require().NoError(err)
		s.Require().Len(items, 2)
		s.Equal(seed[1].ID, items[0].ID)

		total, err := s.store.Count(context.Background(), q)
		s.Require().NoError(err)
		s.Equal(4, total)
	})

	s.Run("offset past the end returns an empty page", func() {
		q := models.ListQuery{Limit: 10, Offset: 40}
		items, err := s.store.List(context.Background(), q)
		s.Require().NoError(err)
		s.Empty(items)
	})
}
