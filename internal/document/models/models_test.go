package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "adopsi/pkg/domain"
	dErrors "adopsi/pkg/domain-errors"
)

func docOfType(t Type) *Document {
	return &Document{
		ID:            id.NewDocumentID(),
		ApplicationID: id.NewApplicationID(),
		Type:          t,
		FileName:      t.String() + ".pdf",
		FileKey:       "test/" + t.String(),
		FileSize:      1024,
		MimeType:      "application/pdf",
	}
}

func TestMissingCategories(t *testing.T) {
	t.Run("empty set misses all four in declaration order", func(t *testing.T) {
		missing := MissingCategories(nil)
		assert.Equal(t, []Type{TypeKTP, TypeKK, TypeHealthCertificate, TypeConductCertificate}, missing)
	})

	t.Run("optional categories do not count toward completeness", func(t *testing.T) {
		docs := []*Document{
			docOfType(TypeSuratNikah),
			docOfType(TypeSlipGaji),
			docOfType(TypeRecommendation),
		}
		missing := MissingCategories(docs)
		assert.Len(t, missing, 4)
	})

	t.Run("duplicates of one category cover only that category", func(t *testing.T) {
		docs := []*Document{docOfType(TypeKTP), docOfType(TypeKTP)}
		missing := MissingCategories(docs)
		assert.Equal(t, []Type{TypeKK, TypeHealthCertificate, TypeConductCertificate}, missing)
	})

	t.Run("full required set reports nothing missing", func(t *testing.T) {
		docs := []*Document{
			docOfType(TypeKTP),
			docOfType(TypeKK),
			docOfType(TypeHealthCertificate),
			docOfType(TypeConductCertificate),
		}
		assert.Empty(t, MissingCategories(docs))
	})
}

func TestUploadRequestValidate(t *testing.T) {
	valid := func() UploadRequest {
		return UploadRequest{
			ApplicationID: id.NewApplicationID(),
			Type:          TypeKTP,
			FileName:      "ktp.pdf",
			FileSize:      2048,
			MimeType:      "application/pdf",
		}
	}

	t.Run("accepts a valid request", func(t *testing.T) {
		req := valid()
		assert.NoError(t, req.Validate())
	})

	t.Run("accepts a file exactly at the limit", func(t *testing.T) {
		req := valid()
		req.FileSize = MaxFileSize
		assert.NoError(t, req.Validate())
	})

	t.Run("rejects a file one byte over the limit", func(t *testing.T) {
		req := valid()
		req.FileSize = MaxFileSize + 1
		err := req.Validate()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects an empty file", func(t *testing.T) {
		req := valid()
		req.FileSize = 0
		assert.Error(t, req.Validate())
	})

	t.Run("rejects a disallowed mime type", func(t *testing.T) {
		req := valid()
		req.MimeType = "text/html"
		assert.Error(t, req.Validate())
	})

	t.Run("accepts every allowlisted mime type", func(t *testing.T) {
		for _, mime := range []string{
			"application/pdf",
			"image/jpeg",
			"image/png",
			"image/jpg",
			"application/msword",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		} {
			req := valid()
			req.MimeType = mime
			assert.NoErrorf(t, req.Validate(), "mime %s", mime)
		}
	})
}

func TestParseType(t *testing.T) {
	parsed, err := ParseType("surat_keterangan_sehat")
	require.NoError(t, err)
	assert.Equal(t, TypeHealthCertificate, parsed)

	_, err = ParseType("passport")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = ParseType("")
	assert.Error(t, err)
}
