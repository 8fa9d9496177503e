package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"adopsi/internal/identity/models"
	id "adopsi/pkg/domain"
	"adopsi/pkg/platform/httputil"
	"adopsi/pkg/requestcontext"
)

// Service defines the identity operations the handler exposes.
type Service interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	CurrentUser(ctx context.Context, userID id.UserID) (*models.User, error)
	Logout(ctx context.Context, jti string) error
}

// Handler wires authentication endpoints to the identity service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the endpoints that do not require a bearer token.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/auth/register", h.HandleRegister)
	r.Post("/auth/login", h.HandleLogin)
}

// RegisterProtected mounts the endpoints behind the auth middleware.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Get("/auth/me", h.HandleCurrentUser)
	r.Post("/auth/logout", h.HandleLogout)
}

// HandleRegister handles POST /auth/register.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegisterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	domainReq, err := req.ToDomain()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	user, err := h.service.Register(ctx, domainReq)
	if err != nil {
		h.logger.WarnContext(ctx, "registration failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "user registered",
		"request_id", requestID,
		"user_id", user.ID,
		"role", user.Role,
	)
	httputil.WriteJSON(w, http.StatusCreated, FromUser(user))
}

// HandleLogin handles POST /auth/login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[LoginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	user, token, err := h.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.logger.WarnContext(ctx, "login failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		User:        FromUser(user),
	})
}

// HandleCurrentUser handles GET /auth/me.
func (h *Handler) HandleCurrentUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := h.service.CurrentUser(ctx, requestcontext.UserID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromUser(user))
}

// HandleLogout handles POST /auth/logout.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.service.Logout(ctx, requestcontext.TokenID(ctx)); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
