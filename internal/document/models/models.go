// Package models defines the supporting documents attached to an adoption
// application and the completeness rule the submit gate enforces.
package models

import (
	"time"

	id "adopsi/pkg/domain"
	dErrors "adopsi/pkg/domain-errors"
)

// Type is the category of a supporting document.
type Type string

const (
	TypeKTP                Type = "ktp"
	TypeKK                 Type = "kk"
	TypeSuratNikah         Type = "surat_nikah"
	TypeSlipGaji           Type = "slip_gaji"
	TypeHealthCertificate  Type = "surat_keterangan_sehat"
	TypeConductCertificate Type = "surat_keterangan_berkelakuan_baik"
	TypeRecommendation     Type = "surat_rekomendasi"
)

var validTypes = map[Type]bool{
	TypeKTP:                true,
	TypeKK:                 true,
	TypeSuratNikah:         true,
	TypeSlipGaji:           true,
	TypeHealthCertificate:  true,
	TypeConductCertificate: true,
	TypeRecommendation:     true,
}

// ParseType constructs a Type from external input.
func ParseType(s string) (Type, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "document type cannot be empty")
	}
	t := Type(s)
	if !validTypes[t] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid document type")
	}
	return t, nil
}

func (t Type) IsValid() bool {
	return validTypes[t]
}

func (t Type) String() string {
	return string(t)
}

// RequiredForSubmission lists the categories that must each have at least one
// uploaded document before an application can be submitted. Order is the
// order missing categories are reported in.
var RequiredForSubmission = []Type{
	TypeKTP,
	TypeKK,
	TypeHealthCertificate,
	TypeConductCertificate,
}

// MissingCategories returns the required categories not covered by docs, in
// the RequiredForSubmission order. An empty result means the set is complete.
func MissingCategories(docs []*Document) []Type {
	present := make(map[Type]bool, len(docs))
	for _, d := range docs {
		present[d.Type] = true
	}
	var missing []Type
	for _, t := range RequiredForSubmission {
		if !present[t] {
			missing = append(missing, t)
		}
	}
	return missing
}

// MaxFileSize is the upload ceiling per document.
const MaxFileSize = 10 << 20

// allowedMimeTypes is the upload content-type allowlist.
var allowedMimeTypes = map[string]bool{
	"application/pdf":    true,
	"image/jpeg":         true,
	"image/png":          true,
	"image/jpg":          true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// MimeTypeAllowed reports whether the content type may be uploaded.
func MimeTypeAllowed(mime string) bool {
	return allowedMimeTypes[mime]
}

// VerifyStamp records who verified a document and when. The pair is one
// optional composite so a half-set stamp cannot exist.
type VerifyStamp struct {
	By id.UserID
	At time.Time
}

// Document is one uploaded supporting file attached to an application.
// FileKey locates the bytes in the blob store; metadata lives here.
type Document struct {
	ID            id.DocumentID
	ApplicationID id.ApplicationID
	Type          Type
	FileName      string
	FileKey       string
	FileSize      int64
	MimeType      string
	Verified      *VerifyStamp
	UploadedAt    time.Time
}

// UploadRequest carries a pending upload's metadata for validation before
// any bytes are stored.
type UploadRequest struct {
	ApplicationID id.ApplicationID
	Type          Type
	FileName      string
	FileSize      int64
	MimeType      string
}

// Validate enforces the per-file constraints.
func (r *UploadRequest) Validate() error {
	if r.ApplicationID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "application id is required")
	}
	if !r.Type.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid document type")
	}
	if r.FileName == "" {
		return dErrors.New(dErrors.CodeValidation, "file name is required")
	}
	if r.FileSize <= 0 {
		return dErrors.New(dErrors.CodeValidation, "file is empty")
	}
	if r.FileSize > MaxFileSize {
		return dErrors.New(dErrors.CodeValidation, "file size exceeds maximum limit of 10MB")
	}
	if !MimeTypeAllowed(r.MimeType) {
		return dErrors.New(dErrors.CodeValidation, "file type is not allowed")
	}
	return nil
}
