//go:build integration

package history_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	appmodels "adopsi/internal/application/models"
	appstore "adopsi/internal/application/store"
	"adopsi/internal/history"
	identitymodels "adopsi/internal/identity/models"
	userstore "adopsi/internal/identity/store"
	id "adopsi/pkg/domain"
	"adopsi/pkg/testutil/containers"
)

type LedgerPostgresSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *history.PostgresStore
	apps     *appstore.PostgresStore
	users    *userstore.PostgresUserStore

	owner id.UserID
	appID id.ApplicationID
}

func TestLedgerPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(LedgerPostgresSuite))
}

func (s *LedgerPostgresSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = history.NewPostgresStore(s.postgres.DB)
	s.apps = appstore.NewPostgresStore(s.postgres.DB)
	s.users = userstore.NewPostgresUserStore(s.postgres.DB)
}

func (s *LedgerPostgresSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateAll(ctx))

	now := time.Now().UTC()
	user := &identitymodels.User{
		ID:           id.NewUserID(),
		Email:        "owner@example.com",
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		FullName:     "Integration User",
		Role:         id.RoleApplicant,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.Require().NoError(s.users.Create(ctx, user))
	s.owner = user.ID

	app := &appmodels.Application{
		ID:                   id.NewApplicationID(),
		UserID:               s.owner,
		Status:               appmodels.StatusSubmitted,
		FullName:             "Budi Santoso",
		DateOfBirth:          time.Date(1990, time.March, 12, 0, 0, 0, 0, time.UTC),
		PlaceOfBirth:         "Bandung",
		Address:              "Jl. Merdeka No. 45, Bandung",
		Phone:                "+62-812-0000-1111",
		Occupation:           "Civil servant",
		MonthlyIncome:        decimal.RequireFromString("9500000.00"),
		ReasonForAdoption:    strings.Repeat("We have wanted to raise a child for many years. ", 3),
		PreferredChildAgeMax: 5,
		PreferredChildGender: appmodels.GenderNoPreference,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	s.Require().NoError(s.apps.Create(ctx, app))
	s.appID = app.ID
}

func (s *LedgerPostgresSuite) TestAppendAssignsIDAndTimestamp() {
	ctx := context.Background()

	draft := appmodels.StatusDraft
	note := "Application submitted for review"
	entry := &history.Entry{
		ApplicationID: s.appID,
		OldStatus:     &draft,
		NewStatus:     appmodels.StatusSubmitted,
		ChangedBy:     s.owner,
		Notes:         &note,
	}
	s.Require().NoError(s.store.Append(ctx, entry))
	s.NotZero(entry.ID)
	s.False(entry.CreatedAt.IsZero())

	entries, err := s.store.ListByApplication(ctx, s.appID)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Require().NotNil(entries[0].OldStatus)
	s.Equal(appmodels.StatusDraft, *entries[0].OldStatus)
	s.Equal(&note, entries[0].Notes)
}

func (s *LedgerPostgresSuite) TestListMostRecentFirst() {
	ctx := context.Background()

	transitions := []appmodels.Status{
		appmodels.StatusSubmitted,
		appmodels.StatusUnderReview,
		appmodels.StatusApproved,
	}
	for _, status := range transitions {
		entry := &history.Entry{
			ApplicationID: s.appID,
			NewStatus:     status,
			ChangedBy:     s.owner,
		}
		s.Require().NoError(s.store.Append(ctx, entry))
	}

	entries, err := s.store.ListByApplication(ctx, s.appID)
	s.Require().NoError(err)
	s.Require().Len(entries, 3)
	s.Equal(appmodels.StatusApproved, entries[0].NewStatus)
	s.Equal(appmodels.StatusSubmitted, entries[2].NewStatus)

	unknown, err := s.store.ListByApplication(ctx, id.NewApplicationID())
	s.Require().NoError(err)
	s.Empty(unknown)
}
