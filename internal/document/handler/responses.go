package handler

import (
	"time"

	"adopsi/internal/document/models"
)

// DocumentResponse is the HTTP view of a document's metadata.
type DocumentResponse struct {
	ID            string     `json:"id"`
	ApplicationID string     `json:"application_id"`
	Type          string     `json:"document_type"`
	FileName      string     `json:"file_name"`
	FileSize      int64      `json:"file_size"`
	MimeType      string     `json:"mime_type"`
	Verified      bool       `json:"verified"`
	VerifiedBy    *string    `json:"verified_by,omitempty"`
	VerifiedAt    *time.Time `json:"verified_at,omitempty"`
	UploadedAt    time.Time  `json:"uploaded_at"`
}

// FromDocument converts a domain document to its HTTP representation.
func FromDocument(doc *models.Document) *DocumentResponse {
	resp := &DocumentResponse{
		ID:            doc.ID.String(),
		ApplicationID: doc.ApplicationID.String(),
		Type:          doc.Type.String(),
		FileName:      doc.FileName,
		FileSize:      doc.FileSize,
		MimeType:      doc.MimeType,
		UploadedAt:    doc.UploadedAt,
	}
	if doc.Verified != nil {
		by := doc.Verified.By.String()
		at := doc.Verified.At
		resp.Verified = true
		resp.VerifiedBy = &by
		resp.VerifiedAt = &at
	}
	return resp
}

// FromDocuments converts a document list to its HTTP representation.
func FromDocuments(docs []*models.Document) []*DocumentResponse {
	out := make([]*DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, FromDocument(doc))
	}
	return out
}
