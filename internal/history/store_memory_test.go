package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	appmodels "adopsi/internal/application/models"
	id "adopsi/pkg/domain"
)

type LedgerStoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func (s *LedgerStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
}

func TestLedgerStoreSuite(t *testing.T) {
	suite.Run(t, new(LedgerStoreSuite))
}

func (s *LedgerStoreSuite) TestAppend() {
	s.Run("assigns id and timestamp back to the entry", func() {
		draft := appmodels.StatusDraft
		entry := &Entry{
			ApplicationID: id.NewApplicationID(),
			OldStatus:     &draft,
			NewStatus:     appmodels.StatusSubmitted,
			ChangedBy:     id.NewUserID(),
		}
		s.Require().NoError(s.store.Append(context.Background(), entry))
		s.NotZero(entry.ID)
		s.False(entry.CreatedAt.IsZero())
	})

	s.Run("ids are monotonic", func() {
		appID := id.NewApplicationID()
		first := &Entry{ApplicationID: appID, NewStatus: appmodels.StatusSubmitted, ChangedBy: id.NewUserID()}
		second := &Entry{ApplicationID: appID, NewStatus: appmodels.StatusUnderReview, ChangedBy: id.NewUserID()}
		s.Require().NoError(s.store.Append(context.Background(), first))
		s.Require().NoError(s.store.Append(context.Background(), second))
		s.Greater(second.ID, first.ID)
	})
}

func (s *LedgerStoreSuite) TestListByApplication() {
	appID := id.NewApplicationID()
	caseworker := id.NewUserID()
	base := time.Now().UTC().Add(-time.Hour)

	statuses := []appmodels.Status{
		appmodels.StatusSubmitted,
		appmodels.StatusUnderReview,
		appmodels.StatusApproved,
	}
	for i, status := range statuses {
		entry := &Entry{
			ApplicationID: appID,
			NewStatus:     status,
			ChangedBy:     caseworker,
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
		}
		s.Require().NoError(s.store.Append(context.Background(), entry))
	}
	other := &Entry{ApplicationID: id.NewApplicationID(), NewStatus: appmodels.StatusSubmitted, ChangedBy: caseworker}
	s.Require().NoError(s.store.Append(context.Background(), other))

	s.Run("lists only the application's entries, most recent first", func() {
		entries, err := s.store.ListByApplication(context.Background(), appID)
		s.Require().NoError(err)
		s.Require().Len(entries, 3)
		s.Equal(appmodels.StatusApproved, entries[0].NewStatus)
		s.Equal(appmodels.StatusSubmitted, entries[2].NewStatus)
	})

	s.Run("same-timestamp entries fall back to insertion order, newest first", func() {
		appID := id.NewApplicationID()
		at := time.Now().UTC()
		first := &Entry{ApplicationID: appID, NewStatus: appmodels.StatusSubmitted, ChangedBy: caseworker, CreatedAt: at}
		second := &Entry{ApplicationID: appID, NewStatus: appmodels.StatusUnderReview, ChangedBy: caseworker, CreatedAt: at}
		s.Require().NoError(s.store.Append(context.Background(), first))
		s.Require().NoError(s.store.Append(context.Background(), second))

		entries, err := s.store.ListByApplication(context.Background(), appID)
		s.Require().NoError(err)
		s.Require().Len(entries, 2)
		s.Equal(second.ID, entries[0].ID)
	})

	s.Run("unknown application lists empty without error", func() {
		entries, err := s.store.ListByApplication(context.Background(), id.NewApplicationID())
		s.Require().NoError(err)
		s.Empty(entries)
	})
}
