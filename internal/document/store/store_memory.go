package store

import (
	"context"
	"sort"
	"sync"

	"adopsi/internal/document/models"
	id "adopsi/pkg/domain"
	"adopsi/pkg/platform/sentinel"
)

// InMemoryStore keeps document metadata in memory for tests and local runs.
type InMemoryStore struct {
	mu   sync.RWMutex
	docs map[id.DocumentID]*models.Document
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{docs: make(map[id.DocumentID]*models.Document)}
}

func (s *InMemoryStore) Create(_ context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.docs[doc.ID]; exists {
		return sentinel.ErrConflict
	}
	s.docs[doc.ID] = cloneDocument(doc)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, docID id.DocumentID) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[docID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneDocument(doc), nil
}

func (s *InMemoryStore) ListByApplication(_ context.Context, appID id.ApplicationID) ([]*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Document
	for _, doc := range s.docs {
		if doc.ApplicationID == appID {
			out = append(out, cloneDocument(doc))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].UploadedAt.Before(out[j].UploadedAt)
	})
	return out, nil
}

func (s *InMemoryStore) Update(_ context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[doc.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.docs[doc.ID] = cloneDocument(doc)
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, docID id.DocumentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[docID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.docs, docID)
	return nil
}

func cloneDocument(doc *models.Document) *models.Document {
	copied := *doc
	if doc.Verified != nil {
		stamp := *doc.Verified
		copied.Verified = &stamp
	}
	return &copied
}
