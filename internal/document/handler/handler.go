package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"adopsi/internal/document/models"
	id "adopsi/pkg/domain"
	dErrors "adopsi/pkg/domain-errors"
	"adopsi/pkg/platform/httputil"
	"adopsi/pkg/requestcontext"
)

// multipartMemoryLimit bounds how much of an upload buffers in memory before
// spilling to a temp file.
const multipartMemoryLimit = 4 << 20

// Service defines the document operations the handler exposes.
type Service interface {
	Upload(ctx context.Context, callerID id.UserID, req models.UploadRequest, content io.Reader) (*models.Document, error)
	ListByApplication(ctx context.Context, role id.Role, callerID id.UserID, appID id.ApplicationID) ([]*models.Document, error)
	Open(ctx context.Context, role id.Role, callerID id.UserID, docID id.DocumentID) (*models.Document, io.ReadCloser, error)
	Delete(ctx context.Context, callerID id.UserID, docID id.DocumentID) error
	SetVerified(ctx context.Context, callerID id.UserID, docID id.DocumentID, verified bool) (*models.Document, error)
}

// Handler wires document endpoints to the document service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts document endpoints on the router. All of them sit behind
// the auth middleware.
func (h *Handler) Register(r chi.Router) {
	r.Post("/applications/{applicationID}/documents", h.HandleUpload)
	r.Get("/applications/{applicationID}/documents", h.HandleList)
	r.Get("/documents/{documentID}/download", h.HandleDownload)
	r.Delete("/documents/{documentID}", h.HandleDelete)
	r.Put("/documents/{documentID}/verify", h.HandleVerify)
}

func documentIDFromURL(r *http.Request) (id.DocumentID, error) {
	return id.ParseDocumentID(chi.URLParam(r, "documentID"))
}

// HandleUpload handles POST /applications/{applicationID}/documents. The
// body is multipart form data with a "file" part and a "document_type" field.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	appID, err := id.ParseApplicationID(chi.URLParam(r, "applicationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	// The size ceiling is enforced again in the service from the part
	// header; MaxBytesReader stops oversized bodies from streaming in.
	r.Body = http.MaxBytesReader(w, r.Body, models.MaxFileSize+multipartMemoryLimit)
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "file size exceeds maximum limit of 10MB"))
		return
	}

	docType, err := models.ParseType(r.FormValue("document_type"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "a file part is required"))
		return
	}
	defer file.Close()

	doc, err := h.service.Upload(ctx, requestcontext.UserID(ctx), models.UploadRequest{
		ApplicationID: appID,
		Type:          docType,
		FileName:      filepath.Base(header.Filename),
		FileSize:      header.Size,
		MimeType:      header.Header.Get("Content-Type"),
	}, file)
	if err != nil {
		h.logger.WarnContext(ctx, "document upload failed",
			"request_id", requestID,
			"application_id", appID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, FromDocument(doc))
}

// HandleList handles GET /applications/{applicationID}/documents.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	appID, err := id.ParseApplicationID(chi.URLParam(r, "applicationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	docs, err := h.service.ListByApplication(ctx, requestcontext.Role(ctx), requestcontext.UserID(ctx), appID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromDocuments(docs))
}

// HandleDownload handles GET /documents/{documentID}/download.
func (h *Handler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	docID, err := documentIDFromURL(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	doc, rc, err := h.service.Open(ctx, requestcontext.Role(ctx), requestcontext.UserID(ctx), docID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", doc.MimeType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+doc.FileName+`"`)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.WarnContext(ctx, "document download interrupted",
			"document_id", docID,
			"error", err,
		)
	}
}

// HandleDelete handles DELETE /documents/{documentID}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	docID, err := documentIDFromURL(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.Delete(ctx, requestcontext.UserID(ctx), docID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// verifyRequest is the HTTP request for PUT /documents/{documentID}/verify.
type verifyRequest struct {
	Verified bool `json:"verified"`
}

// HandleVerify handles PUT /documents/{documentID}/verify.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	docID, err := documentIDFromURL(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[verifyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	doc, err := h.service.SetVerified(ctx, requestcontext.UserID(ctx), docID, req.Verified)
	if err != nil {
		h.logger.WarnContext(ctx, "document verification failed",
			"request_id", requestID,
			"document_id", docID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromDocument(doc))
}
