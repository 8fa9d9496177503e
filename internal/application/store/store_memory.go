package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"adopsi/internal/application/models"
	id "adopsi/pkg/domain"
	"adopsi/pkg/platform/sentinel"
)

// InMemoryStore keeps applications in memory for tests and local runs.
type InMemoryStore struct {
	mu   sync.RWMutex
	apps map[id.ApplicationID]*models.Application
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{apps: make(map[id.ApplicationID]*models.Application)}
}

func (s *InMemoryStore) Create(_ context.Context, app *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.apps[app.ID]; exists {
		return sentinel.ErrConflict
	}
	copied := cloneApplication(app)
	s.apps[app.ID] = copied
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, appID id.ApplicationID) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	app, ok := s.apps[appID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneApplication(app), nil
}

func (s *InMemoryStore) Update(_ context.Context, app *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.apps[app.ID]; !ok {
		return sentinel.ErrNotFound
	}
	app.UpdatedAt = time.Now().UTC()
	s.apps[app.ID] = cloneApplication(app)
	return nil
}

func (s *InMemoryStore) List(_ context.Context, q models.ListQuery) ([]*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.match(q)
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID.String() > matched[j].ID.String()
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if q.Offset >= len(matched) {
		return nil, nil
	}
	matched = matched[q.Offset:]
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}

	out := make([]*models.Application, 0, len(matched))
	for _, app := range matched {
		out = append(out, cloneApplication(app))
	}
	return out, nil
}

func (s *InMemoryStore) Count(_ context.Context, q models.ListQuery) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.match(q)), nil
}

func (s *InMemoryStore) match(q models.ListQuery) []*models.Application {
	var matched []*models.Application
	for _, app := range s.apps {
		if q.Status != nil && app.Status != *q.Status {
			continue
		}
		if q.OwnerID != nil && app.UserID != *q.OwnerID {
			continue
		}
		matched = append(matched, app)
	}
	return matched
}

func cloneApplication(app *models.Application) *models.Application {
	copied := *app
	copied.SpouseName = clonePtr(app.SpouseName)
	copied.SpouseOccupation = clonePtr(app.SpouseOccupation)
	copied.SpouseIncome = clonePtr(app.SpouseIncome)
	copied.AdminNotes = clonePtr(app.AdminNotes)
	if app.Review != nil {
		review := *app.Review
		copied.Review = &review
	}
	return &copied
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
