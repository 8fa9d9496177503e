// Package service implements the supporting document flow: upload while an
// application is editable, delete while it is a draft, and the caseworker
// verification toggle.
//
// Verification is operational metadata, not a lifecycle event, so it emits
// an audit event but never touches the status ledger.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	appmodels "adopsi/internal/application/models"
	"adopsi/internal/application/store"
	"adopsi/internal/audit"
	"adopsi/internal/blobstore"
	"adopsi/internal/document/models"
	docstore "adopsi/internal/document/store"
	"adopsi/internal/identity"
	"adopsi/internal/platform/metrics"
	id "adopsi/pkg/domain"
	dErrors "adopsi/pkg/domain-errors"
	"adopsi/pkg/platform/sentinel"
	"adopsi/pkg/requestcontext"
)

// Service orchestrates document uploads, deletion, and verification.
type Service struct {
	docs    docstore.DocumentStore
	apps    store.ApplicationStore
	blobs   blobstore.Store
	gate    *identity.Gate
	logger  *slog.Logger
	auditor *audit.Publisher
	metrics *metrics.Metrics
}

// Option configures optional service collaborators.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(p *audit.Publisher) Option {
	return func(s *Service) { s.auditor = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(
	docs docstore.DocumentStore,
	apps store.ApplicationStore,
	blobs blobstore.Store,
	gate *identity.Gate,
	opts ...Option,
) *Service {
	s := &Service{
		docs:   docs,
		apps:   apps,
		blobs:  blobs,
		gate:   gate,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upload validates the file metadata, stores the bytes, and records the
// document. The owning application must still be editable.
func (s *Service) Upload(ctx context.Context, callerID id.UserID, req models.UploadRequest, content io.Reader) (*models.Document, error) {
	caller, err := s.gate.RequireApplicant(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	app, err := s.loadOwnedApplication(ctx, req.ApplicationID, caller.ID)
	if err != nil {
		return nil, err
	}
	if !app.Status.Editable() {
		return nil, dErrors.Newf(dErrors.CodeInvalidState,
			"documents cannot be added while the application is %s", app.Status)
	}

	docID := id.NewDocumentID()
	key := fmt.Sprintf("applications/%s/%s-%s", app.ID, docID, req.FileName)
	if err := s.blobs.Put(ctx, key, req.MimeType, req.FileSize, content); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store file")
	}

	doc := &models.Document{
		ID:            docID,
		ApplicationID: app.ID,
		Type:          req.Type,
		FileName:      req.FileName,
		FileKey:       key,
		FileSize:      req.FileSize,
		MimeType:      req.MimeType,
		UploadedAt:    requestcontext.Now(ctx).UTC(),
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		// Orphaned blob cleanup is best effort.
		if delErr := s.blobs.Delete(ctx, key); delErr != nil {
			s.logger.WarnContext(ctx, "failed to remove orphaned blob",
				slog.String("key", key), slog.String("error", delErr.Error()))
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record document")
	}

	if s.metrics != nil {
		s.metrics.DocumentsUploaded.Inc()
	}
	s.emit(ctx, audit.Event{
		Action:      audit.EventDocumentUploaded,
		ActorID:     caller.ID,
		SubjectType: "document",
		SubjectID:   doc.ID.String(),
		Reason:      doc.Type.String(),
	})
	s.logger.InfoContext(ctx, "document uploaded",
		slog.String("document_id", doc.ID.String()),
		slog.String("application_id", app.ID.String()),
		slog.String("type", doc.Type.String()))
	return doc, nil
}

// ListByApplication returns an application's documents under the same
// visibility rules as application reads.
func (s *Service) ListByApplication(ctx context.Context, role id.Role, callerID id.UserID, appID id.ApplicationID) ([]*models.Document, error) {
	if err := s.gate.CheckReadAccess(role, callerID); err != nil {
		return nil, err
	}
	app, err := s.loadApplication(ctx, appID)
	if err != nil {
		return nil, err
	}
	if role == id.RoleApplicant && app.UserID != callerID {
		return nil, dErrors.New(dErrors.CodeNotFound, "application not found")
	}
	docs, err := s.docs.ListByApplication(ctx, appID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list documents")
	}
	return docs, nil
}

// Open returns a document's metadata and a reader over its bytes. The caller
// closes the reader.
func (s *Service) Open(ctx context.Context, role id.Role, callerID id.UserID, docID id.DocumentID) (*models.Document, io.ReadCloser, error) {
	if err := s.gate.CheckReadAccess(role, callerID); err != nil {
		return nil, nil, err
	}
	doc, err := s.loadDocument(ctx, docID)
	if err != nil {
		return nil, nil, err
	}
	app, err := s.loadApplication(ctx, doc.ApplicationID)
	if err != nil {
		return nil, nil, err
	}
	if role == id.RoleApplicant && app.UserID != callerID {
		return nil, nil, dErrors.New(dErrors.CodeNotFound, "document not found")
	}

	rc, err := s.blobs.Get(ctx, doc.FileKey)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil, dErrors.New(dErrors.CodeNotFound, "document file not found")
		}
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to open file")
	}
	return doc, rc, nil
}

// Delete removes a document the caller owns. Deletion is allowed only while
// the application is still a draft; after submission the evidence set is
// frozen for review. The metadata row is authoritative, so a failed blob
// delete is logged and counted but does not fail the operation.
func (s *Service) Delete(ctx context.Context, callerID id.UserID, docID id.DocumentID) error {
	caller, err := s.gate.RequireApplicant(ctx, callerID)
	if err != nil {
		return err
	}

	doc, err := s.loadDocument(ctx, docID)
	if err != nil {
		return err
	}
	app, err := s.loadOwnedApplication(ctx, doc.ApplicationID, caller.ID)
	if err != nil {
		return err
	}
	if app.Status != appmodels.StatusDraft {
		return dErrors.Newf(dErrors.CodeInvalidState,
			"documents can only be deleted while the application is a draft, current status is %s", app.Status)
	}

	if err := s.docs.Delete(ctx, docID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "document not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete document")
	}
	if err := s.blobs.Delete(ctx, doc.FileKey); err != nil {
		if s.metrics != nil {
			s.metrics.BlobDeleteFailures.Inc()
		}
		s.logger.WarnContext(ctx, "failed to delete blob",
			slog.String("key", doc.FileKey), slog.String("error", err.Error()))
	}

	s.emit(ctx, audit.Event{
		Action:      audit.EventDocumentDeleted,
		ActorID:     caller.ID,
		SubjectType: "document",
		SubjectID:   docID.String(),
	})
	s.logger.InfoContext(ctx, "document deleted",
		slog.String("document_id", docID.String()),
		slog.String("application_id", app.ID.String()))
	return nil
}

// SetVerified records or clears a caseworker's verification stamp. Setting
// an already verified document overwrites the stamp with the current caller
// and time.
func (s *Service) SetVerified(ctx context.Context, callerID id.UserID, docID id.DocumentID, verified bool) (*models.Document, error) {
	caller, err := s.gate.RequireCaseworker(ctx, callerID)
	if err != nil {
		return nil, err
	}

	doc, err := s.loadDocument(ctx, docID)
	if err != nil {
		return nil, err
	}

	action := audit.EventDocumentVerified
	if verified {
		doc.Verified = &models.VerifyStamp{By: caller.ID, At: requestcontext.Now(ctx).UTC()}
	} else {
		doc.Verified = nil
		action = audit.EventDocumentUnverified
	}
	if err := s.docs.Update(ctx, doc); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update document")
	}

	if s.metrics != nil {
		s.metrics.DocumentsVerified.Inc()
	}
	s.emit(ctx, audit.Event{
		Action:      action,
		ActorID:     caller.ID,
		SubjectType: "document",
		SubjectID:   docID.String(),
	})
	s.logger.InfoContext(ctx, "document verification updated",
		slog.String("document_id", docID.String()),
		slog.Bool("verified", verified))
	return doc, nil
}

func (s *Service) loadDocument(ctx context.Context, docID id.DocumentID) (*models.Document, error) {
	doc, err := s.docs.FindByID(ctx, docID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "document not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load document")
	}
	return doc, nil
}

func (s *Service) loadApplication(ctx context.Context, appID id.ApplicationID) (*appmodels.Application, error) {
	app, err := s.apps.FindByID(ctx, appID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "application not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load application")
	}
	return app, nil
}

func (s *Service) loadOwnedApplication(ctx context.Context, appID id.ApplicationID, callerID id.UserID) (*appmodels.Application, error) {
	app, err := s.loadApplication(ctx, appID)
	if err != nil {
		return nil, err
	}
	if app.UserID != callerID {
		return nil, dErrors.New(dErrors.CodeNotFound, "application not found")
	}
	return app, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	event.RequestID = requestcontext.RequestID(ctx)
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			slog.String("action", string(event.Action)),
			slog.String("error", err.Error()))
	}
}
