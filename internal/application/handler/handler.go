package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"adopsi/internal/application/models"
	"adopsi/internal/history"
	id "adopsi/pkg/domain"
	"adopsi/pkg/platform/httputil"
	"adopsi/pkg/requestcontext"
)

// Service defines the application lifecycle operations the handler exposes.
type Service interface {
	Create(ctx context.Context, callerID id.UserID, req models.CreateRequest) (*models.Application, error)
	Update(ctx context.Context, callerID id.UserID, appID id.ApplicationID, patch models.Patch) (*models.Application, error)
	Submit(ctx context.Context, callerID id.UserID, appID id.ApplicationID) (*models.Application, error)
	Review(ctx context.Context, callerID id.UserID, req models.ReviewRequest) (*models.Application, error)
	Complete(ctx context.Context, callerID id.UserID, appID id.ApplicationID) (*models.Application, error)
	Get(ctx context.Context, role id.Role, callerID id.UserID, appID id.ApplicationID) (*models.Application, error)
	List(ctx context.Context, role id.Role, callerID id.UserID, q models.ListQuery) (*models.Page, error)
	GetStatusHistory(ctx context.Context, role id.Role, callerID id.UserID, appID id.ApplicationID) ([]*history.Entry, error)
}

// Handler wires application endpoints to the lifecycle service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts application endpoints on the router. All of them sit
// behind the auth middleware.
func (h *Handler) Register(r chi.Router) {
	r.Post("/applications", h.HandleCreate)
	r.Get("/applications", h.HandleList)
	r.Get("/applications/{applicationID}", h.HandleGet)
	r.Patch("/applications/{applicationID}", h.HandleUpdate)
	r.Post("/applications/{applicationID}/submit", h.HandleSubmit)
	r.Post("/applications/{applicationID}/review", h.HandleReview)
	r.Post("/applications/{applicationID}/complete", h.HandleComplete)
	r.Get("/applications/{applicationID}/history", h.HandleHistory)
}

func applicationIDFromURL(r *http.Request) (id.ApplicationID, error) {
	return id.ParseApplicationID(chi.URLParam(r, "applicationID"))
}

// HandleCreate handles POST /applications.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateApplicationRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	app, err := h.service.Create(ctx, requestcontext.UserID(ctx), req.ToDomain())
	if err != nil {
		h.logger.WarnContext(ctx, "application create failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, FromApplication(app))
}

// HandleList handles GET /applications.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q, err := listQueryFromURL(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	page, err := h.service.List(ctx, requestcontext.Role(ctx), requestcontext.UserID(ctx), q)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromPage(page))
}

// HandleGet handles GET /applications/{applicationID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	appID, err := applicationIDFromURL(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	app, err := h.service.Get(ctx, requestcontext.Role(ctx), requestcontext.UserID(ctx), appID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromApplication(app))
}

// HandleUpdate handles PATCH /applications/{applicationID}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	appID, err := applicationIDFromURL(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateApplicationRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	app, err := h.service.Update(ctx, requestcontext.UserID(ctx), appID, req.ToDomain())
	if err != nil {
		h.logger.WarnContext(ctx, "application update failed",
			"request_id", requestID,
			"application_id", appID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromApplication(app))
}

// HandleSubmit handles POST /applications/{applicationID}/submit.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	appID, err := applicationIDFromURL(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	app, err := h.service.Submit(ctx, requestcontext.UserID(ctx), appID)
	if err != nil {
		h.logger.WarnContext(ctx, "application submit failed",
			"request_id", requestID,
			"application_id", appID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromApplication(app))
}

// HandleReview handles POST /applications/{applicationID}/review.
func (h *Handler) HandleReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	appID, err := applicationIDFromURL(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[ReviewApplicationRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	target, err := models.ParseStatus(req.Status)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	app, err := h.service.Review(ctx, requestcontext.UserID(ctx), models.ReviewRequest{
		ApplicationID: appID,
		TargetStatus:  target,
		AdminNotes:    req.AdminNotes,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "application review failed",
			"request_id", requestID,
			"application_id", appID,
			"target_status", req.Status,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromApplication(app))
}

// HandleComplete handles POST /applications/{applicationID}/complete.
func (h *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	appID, err := applicationIDFromURL(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	app, err := h.service.Complete(ctx, requestcontext.UserID(ctx), appID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromApplication(app))
}

// HandleHistory handles GET /applications/{applicationID}/history.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	appID, err := applicationIDFromURL(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	entries, err := h.service.GetStatusHistory(ctx, requestcontext.Role(ctx), requestcontext.UserID(ctx), appID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromHistory(entries))
}
