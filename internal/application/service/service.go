// Package service implements the adoption application lifecycle: create,
// sparse update, submit, caseworker review, and completion, plus the reads
// that go with them.
//
// Status changes and their ledger entries commit in one transaction. Audit
// events are best-effort and never fail an operation.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"adopsi/internal/application/models"
	"adopsi/internal/application/store"
	"adopsi/internal/audit"
	docmodels "adopsi/internal/document/models"
	docstore "adopsi/internal/document/store"
	"adopsi/internal/history"
	"adopsi/internal/identity"
	"adopsi/internal/platform/metrics"
	id "adopsi/pkg/domain"
	dErrors "adopsi/pkg/domain-errors"
	"adopsi/pkg/platform/sentinel"
	"adopsi/pkg/requestcontext"
)

const submitNote = "Application submitted for review"

// Service orchestrates the application lifecycle.
type Service struct {
	apps    store.ApplicationStore
	docs    docstore.DocumentStore
	ledger  history.Store
	gate    *identity.Gate
	runner  store.TxRunner
	logger  *slog.Logger
	auditor *audit.Publisher
	metrics *metrics.Metrics
	tracer  trace.Tracer
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
	apps store.ApplicationStore,
	docs docstore.DocumentStore,
	ledger history.Store,
	gate *identity.Gate,
	runner store.TxRunner,
	opts ...Option,
) *Service {
	s := &Service{
		apps:   apps,
		docs:   docs,
		ledger: ledger,
		gate:   gate,
		runner: runner,
		logger: slog.Default(),
		tracer: otel.Tracer("adopsi/application"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create opens a new draft application owned by the caller. The draft is not
// a ledger event; the ledger starts at the first submission.
func (s *Service) Create(ctx context.Context, callerID id.UserID, req models.CreateRequest) (*models.Application, error) {
	ctx, span := s.tracer.Start(ctx, "application.Create")
	defer span.End()

	caller, err := s.gate.RequireApplicant(ctx, callerID)
	if err != nil {
		return nil, err
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx).UTC()
	app := &models.Application{
		ID:     id.NewApplicationID(),
		UserID: caller.ID,
		Status: models.StatusDraft,

		FullName:      req.FullName,
		DateOfBirth:   req.DateOfBirth,
		PlaceOfBirth:  req.PlaceOfBirth,
		Address:       req.Address,
		Phone:         req.Phone,
		Occupation:    req.Occupation,
		MonthlyIncome: req.MonthlyIncome,

		SpouseName:       req.SpouseName,
		SpouseOccupation: req.SpouseOccupation,
		SpouseIncome:     req.SpouseIncome,

		NumberOfChildren:  req.NumberOfChildren,
		ReasonForAdoption: req.ReasonForAdoption,

		PreferredChildAgeMin: req.PreferredChildAgeMin,
		PreferredChildAgeMax: req.PreferredChildAgeMax,
		PreferredChildGender: req.PreferredChildGender,

		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.apps.Create(ctx, app); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create application")
	}
	span.SetAttributes(attribute.String("application.id", app.ID.String()))

	if s.metrics != nil {
		s.metrics.ApplicationsCreated.Inc()
	}
	s.emit(ctx, audit.Event{
		Action:      audit.EventApplicationCreated,
		ActorID:     caller.ID,
		SubjectType: "application",
		SubjectID:   app.ID.String(),
	})
	s.logger.InfoContext(ctx, "application created",
		slog.String("application_id", app.ID.String()),
		slog.String("user_id", caller.ID.String()))
	return app, nil
}

// Update applies a sparse patch to an application the caller owns. Patching
// is allowed only while the status is still editable.
func (s *Service) Update(ctx context.Context, callerID id.UserID, appID id.ApplicationID, patch models.Patch) (*models.Application, error) {
	ctx, span := s.tracer.Start(ctx, "application.Update")
	defer span.End()

	caller, err := s.gate.RequireApplicant(ctx, callerID)
	if err != nil {
		return nil, err
	}

	// The editable check and the write must see one consistent row, or a
	// review landing in between would be overwritten by the patched copy.
	var patched *models.Application
	err = s.runner.RunInTx(ctx, func(ctx context.Context) error {
		app, err := s.loadOwned(ctx, appID, caller.ID)
		if err != nil {
			return err
		}
		if !app.Status.Editable() {
			return dErrors.Newf(dErrors.CodeInvalidState,
				"application in status %s can no longer be edited", app.Status)
		}
		if patch.Empty() {
			patched = app
			return nil
		}

		patched, err = patch.Apply(app)
		if err != nil {
			return err
		}
		if err := s.apps.Update(ctx, patched); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update application")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return patched, nil
}

// Submit moves a draft to submitted. The application is re-read inside the
// transaction so the status check, completeness check, update, and ledger
// entry see one consistent state.
func (s *Service) Submit(ctx context.Context, callerID id.UserID, appID id.ApplicationID) (*models.Application, error) {
	ctx, span := s.tracer.Start(ctx, "application.Submit",
		trace.WithAttributes(attribute.String("application.id", appID.String())))
	defer span.End()

	caller, err := s.gate.RequireApplicant(ctx, callerID)
	if err != nil {
		return nil, err
	}

	var submitted *models.Application
	err = s.runner.RunInTx(ctx, func(ctx context.Context) error {
		app, err := s.loadOwned(ctx, appID, caller.ID)
		if err != nil {
			return err
		}
		if app.Status != models.StatusDraft {
			return dErrors.Newf(dErrors.CodeInvalidState,
				"only draft applications can be submitted, current status is %s", app.Status)
		}

		docs, err := s.docs.ListByApplication(ctx, app.ID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load documents")
		}
		if missing := docmodels.MissingCategories(docs); len(missing) > 0 {
			return dErrors.Newf(dErrors.CodePreconditionFailed,
				"required documents are missing: %s", joinTypes(missing))
		}

		oldStatus := app.Status
		app.Status = models.StatusSubmitted
		if err := s.apps.Update(ctx, app); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update application")
		}

		note := submitNote
		if err := s.ledger.Append(ctx, &history.Entry{
			ApplicationID: app.ID,
			OldStatus:     &oldStatus,
			NewStatus:     app.Status,
			ChangedBy:     caller.ID,
			Notes:         &note,
		}); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record status change")
		}
		submitted = app
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ApplicationsSubmitted.Inc()
	}
	s.emit(ctx, audit.Event{
		Action:      audit.EventApplicationSubmitted,
		ActorID:     caller.ID,
		SubjectType: "application",
		SubjectID:   appID.String(),
	})
	s.logger.InfoContext(ctx, "application submitted",
		slog.String("application_id", appID.String()),
		slog.String("user_id", caller.ID.String()))
	return submitted, nil
}

// Review records a caseworker decision: under_review, approved, or rejected.
// A decision that would not change the status is rejected, and no decision
// can leave a terminal status.
func (s *Service) Review(ctx context.Context, callerID id.UserID, req models.ReviewRequest) (*models.Application, error) {
	ctx, span := s.tracer.Start(ctx, "application.Review",
		trace.WithAttributes(
			attribute.String("application.id", req.ApplicationID.String()),
			attribute.String("review.target", req.TargetStatus.String()),
		))
	defer span.End()

	caller, err := s.gate.RequireCaseworker(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var reviewed *models.Application
	err = s.runner.RunInTx(ctx, func(ctx context.Context) error {
		app, err := s.load(ctx, req.ApplicationID)
		if err != nil {
			return err
		}
		if app.Status.IsTerminal() {
			return dErrors.Newf(dErrors.CodeInvalidState,
				"application in terminal status %s cannot be reviewed", app.Status)
		}
		if app.Status == req.TargetStatus {
			return dErrors.Newf(dErrors.CodeInvalidState,
				"application is already in status %s", app.Status)
		}

		oldStatus := app.Status
		now := requestcontext.Now(ctx).UTC()
		app.Status = req.TargetStatus
		app.AdminNotes = req.AdminNotes
		app.Review = &models.ReviewStamp{By: caller.ID, At: now}

		if err := s.apps.Update(ctx, app); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update application")
		}
		if err := s.ledger.Append(ctx, &history.Entry{
			ApplicationID: app.ID,
			OldStatus:     &oldStatus,
			NewStatus:     app.Status,
			ChangedBy:     caller.ID,
			Notes:         req.AdminNotes,
		}); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record status change")
		}
		reviewed = app
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementReviewed(req.TargetStatus.String())
	s.emit(ctx, audit.Event{
		Action:      audit.EventApplicationReviewed,
		ActorID:     caller.ID,
		SubjectType: "application",
		SubjectID:   req.ApplicationID.String(),
		Reason:      req.TargetStatus.String(),
	})
	s.logger.InfoContext(ctx, "application reviewed",
		slog.String("application_id", req.ApplicationID.String()),
		slog.String("new_status", req.TargetStatus.String()),
		slog.String("reviewer_id", caller.ID.String()))
	return reviewed, nil
}

// Complete closes out an approved application. Only caseworkers may complete,
// and only from approved.
func (s *Service) Complete(ctx context.Context, callerID id.UserID, appID id.ApplicationID) (*models.Application, error) {
	ctx, span := s.tracer.Start(ctx, "application.Complete",
		trace.WithAttributes(attribute.String("application.id", appID.String())))
	defer span.End()

	caller, err := s.gate.RequireCaseworker(ctx, callerID)
	if err != nil {
		return nil, err
	}

	var completed *models.Application
	err = s.runner.RunInTx(ctx, func(ctx context.Context) error {
		app, err := s.load(ctx, appID)
		if err != nil {
			return err
		}
		if app.Status != models.StatusApproved {
			return dErrors.Newf(dErrors.CodeInvalidState,
				"only approved applications can be completed, current status is %s", app.Status)
		}

		oldStatus := app.Status
		app.Status = models.StatusCompleted
		if err := s.apps.Update(ctx, app); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update application")
		}
		if err := s.ledger.Append(ctx, &history.Entry{
			ApplicationID: app.ID,
			OldStatus:     &oldStatus,
			NewStatus:     app.Status,
			ChangedBy:     caller.ID,
		}); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record status change")
		}
		completed = app
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, audit.Event{
		Action:      audit.EventApplicationCompleted,
		ActorID:     caller.ID,
		SubjectType: "application",
		SubjectID:   appID.String(),
	})
	s.logger.InfoContext(ctx, "application completed",
		slog.String("application_id", appID.String()))
	return completed, nil
}

// Get returns one application. Applicants see only their own; a foreign
// application reads as not found rather than forbidden, so existence does
// not leak.
func (s *Service) Get(ctx context.Context, role id.Role, callerID id.UserID, appID id.ApplicationID) (*models.Application, error) {
	if err := s.gate.CheckReadAccess(role, callerID); err != nil {
		return nil, err
	}
	app, err := s.load(ctx, appID)
	if err != nil {
		return nil, err
	}
	if role == id.RoleApplicant && app.UserID != callerID {
		return nil, dErrors.New(dErrors.CodeNotFound, "application not found")
	}
	return app, nil
}

// List returns one page of applications plus the total. Applicants are
// always scoped to their own records regardless of the query.
func (s *Service) List(ctx context.Context, role id.Role, callerID id.UserID, q models.ListQuery) (*models.Page, error) {
	if err := s.gate.CheckReadAccess(role, callerID); err != nil {
		return nil, err
	}
	if role == id.RoleApplicant {
		owner := callerID
		q.OwnerID = &owner
	}
	q.Normalize()

	var (
		items []*models.Application
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.apps.List(gctx, q)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.apps.Count(gctx, q)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list applications")
	}
	return &models.Page{Items: items, Total: total}, nil
}

// GetStatusHistory returns the status ledger for one application, most
// recent first, under the same visibility rules as Get.
func (s *Service) GetStatusHistory(ctx context.Context, role id.Role, callerID id.UserID, appID id.ApplicationID) ([]*history.Entry, error) {
	if _, err := s.Get(ctx, role, callerID, appID); err != nil {
		return nil, err
	}
	entries, err := s.ledger.ListByApplication(ctx, appID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load status history")
	}
	return entries, nil
}

func (s *Service) load(ctx context.Context, appID id.ApplicationID) (*models.Application, error) {
	app, err := s.apps.FindByID(ctx, appID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "application not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load application")
	}
	return app, nil
}

// loadOwned loads an application and verifies the caller owns it. Foreign
// records read as not found.
func (s *Service) loadOwned(ctx context.Context, appID id.ApplicationID, callerID id.UserID) (*models.Application, error) {
	app, err := s.load(ctx, appID)
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

func joinTypes(types []docmodels.Type) string {
	parts := make([]string, 0, len(types))
	for _, t := range types {
		parts = append(parts, t.String())
	}
	return strings.Join(parts, ", ")
}
