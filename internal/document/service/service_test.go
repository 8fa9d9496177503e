package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	appmodels "adopsi/internal/application/models"
	appstore "adopsi/internal/application/store"
	"adopsi/internal/audit"
	"adopsi/internal/blobstore"
	blobmocks "adopsi/internal/blobstore/mocks"
	"adopsi/internal/document/models"
	docstore "adopsi/internal/document/store"
	"adopsi/internal/identity"
	identitymodels "adopsi/internal/identity/models"
	identitystore "adopsi/internal/identity/store"
	id "adopsi/pkg/domain"
	dErrors "adopsi/pkg/domain-errors"
)

type DocumentServiceSuite struct {
	suite.Suite

	users  *identitystore.InMemoryUserStore
	apps   *appstore.InMemoryStore
	docs   *docstore.InMemoryStore
	blobs  *blobstore.MemoryStore
	events *audit.InMemoryStore
	svc    *Service

	applicant  id.UserID
	intruder   id.UserID
	caseworker id.UserID
	appID      id.ApplicationID
}

func TestDocumentServiceSuite(t *testing.T) {
	suite.Run(t, new(DocumentServiceSuite))
}

func (s *DocumentServiceSuite) SetupTest() {
	s.users = identitystore.NewInMemoryUserStore()
	s.apps = appstore.NewInMemoryStore()
	s.docs = docstore.NewInMemoryStore()
	s.blobs = blobstore.NewMemoryStore()
	s.events = audit.NewInMemoryStore()

	s.applicant = s.addUser(id.RoleApplicant)
	s.intruder = s.addUser(id.RoleApplicant)
	s.caseworker = s.addUser(id.RoleCaseworker)

	s.svc = New(s.docs, s.apps, s.blobs, identity.NewGate(s.users),
		WithAuditPublisher(audit.NewPublisher(s.events)),
	)
	s.appID = s.addApplication(s.applicant, appmodels.StatusDraft)
}

func (s *DocumentServiceSuite) addUser(role id.Role) id.UserID {
	user := &identitymodels.User{
		ID:        id.NewUserID(),
		Email:     id.NewUserID().String() + "@example.com",
		FullName:  "Test User",
		Role:      role,
		Active:    true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	s.Require().NoError(s.users.Create(context.Background(), user))
	return user.ID
}

func (s *DocumentServiceSuite) addApplication(owner id.UserID, status appmodels.Status) id.ApplicationID {
	app := &appmodels.Application{
		ID:                   id.NewApplicationID(),
		UserID:               owner,
		Status:               status,
		FullName:             "Budi Santoso",
		DateOfBirth:          time.Date(1988, 4, 12, 0, 0, 0, 0, time.UTC),
		PlaceOfBirth:         "Bandung",
		Address:              "Jl. Merdeka No. 45, Bandung, Jawa Barat",
		Phone:                "+62-811-2345-678",
		Occupation:           "Civil servant",
		MonthlyIncome:        decimal.NewFromInt(9_500_000),
		NumberOfChildren:     1,
		ReasonForAdoption:    strings.Repeat("We wish to give a child a loving home. ", 3),
		PreferredChildAgeMax: 5,
		PreferredChildGender: appmodels.GenderNoPreference,
		CreatedAt:            time.Now(),
		UpdatedAt:            time.Now(),
	}
	s.Require().NoError(s.apps.Create(context.Background(), app))
	return app.ID
}

func (s *DocumentServiceSuite) uploadRequest() models.UploadRequest {
	return models.UploadRequest{
		ApplicationID: s.appID,
		Type:          models.TypeKTP,
		FileName:      "ktp.pdf",
		FileSize:      2048,
		MimeType:      "application/pdf",
	}
}

func (s *DocumentServiceSuite) upload() *models.Document {
	doc, err := s.svc.Upload(context.Background(), s.applicant, s.uploadRequest(), strings.NewReader("pdf bytes"))
	s.Require().NoError(err)
	return doc
}

func (s *DocumentServiceSuite) setStatus(status appmodels.Status) {
	app, err := s.apps.FindByID(context.Background(), s.appID)
	s.Require().NoError(err)
	app.Status = status
	s.Require().NoError(s.apps.Update(context.Background(), app))
}

func (s *DocumentServiceSuite) TestUpload() {
	s.Run("stores the file and its metadata", func() {
		doc := s.upload()

		s.Equal(models.TypeKTP, doc.Type)
		s.Nil(doc.Verified)
		s.True(s.blobs.Has(doc.FileKey))
		s.Len(s.events.ByAction(audit.EventDocumentUploaded), 1)
	})

	s.Run("rejects a file over the size limit", func() {
		req := s.uploadRequest()
		req.FileSize = 11_000_000

		_, err := s.svc.Upload(context.Background(), s.applicant, req, strings.NewReader("x"))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Contains(dErrors.MessageOf(err), "exceeds maximum limit")
	})

	s.Run("rejects a disallowed content type", func() {
		req := s.uploadRequest()
		req.MimeType = "application/x-msdownload"

		_, err := s.svc.Upload(context.Background(), s.applicant, req, strings.NewReader("x"))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("rejects uploads to another applicant's application", func() {
		_, err := s.svc.Upload(context.Background(), s.intruder, s.uploadRequest(), strings.NewReader("x"))
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("rejects uploads once the application is under review", func() {
		s.setStatus(appmodels.StatusUnderReview)
		defer s.setStatus(appmodels.StatusDraft)

		_, err := s.svc.Upload(context.Background(), s.applicant, s.uploadRequest(), strings.NewReader("x"))
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})
}

func (s *DocumentServiceSuite) TestDelete() {
	s.Run("removes the metadata and the blob while a draft", func() {
		doc := s.upload()

		s.Require().NoError(s.svc.Delete(context.Background(), s.applicant, doc.ID))
		_, err := s.docs.FindByID(context.Background(), doc.ID)
		s.Error(err)
		s.False(s.blobs.Has(doc.FileKey))
	})

	s.Run("refuses deletion after submission", func() {
		doc := s.upload()
		s.setStatus(appmodels.StatusSubmitted)
		defer s.setStatus(appmodels.StatusDraft)

		err := s.svc.Delete(context.Background(), s.applicant, doc.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.Run("hides another applicant's document", func() {
		doc := s.upload()

		err := s.svc.Delete(context.Background(), s.intruder, doc.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *DocumentServiceSuite) TestDeleteSurvivesBlobFailure() {
	ctrl := gomock.NewController(s.T())
	blobs := blobmocks.NewMockStore(ctrl)
	svc := New(s.docs, s.apps, blobs, identity.NewGate(s.users))

	blobs.EXPECT().Put(gomock.Any(), gomock.Any(), "application/pdf", int64(2048), gomock.Any()).Return(nil)
	blobs.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(errors.New("bucket unreachable"))

	doc, err := svc.Upload(context.Background(), s.applicant, s.uploadRequest(), strings.NewReader("pdf bytes"))
	s.Require().NoError(err)

	// Metadata is authoritative; the failed blob delete is absorbed.
	s.Require().NoError(svc.Delete(context.Background(), s.applicant, doc.ID))
	_, err = s.docs.FindByID(context.Background(), doc.ID)
	s.Error(err)
}

func (s *DocumentServiceSuite) TestVerification() {
	s.Run("stamps the verifying caseworker", func() {
		doc := s.upload()

		verified, err := s.svc.SetVerified(context.Background(), s.caseworker, doc.ID, true)
		s.Require().NoError(err)
		s.Require().NotNil(verified.Verified)
		s.Equal(s.caseworker, verified.Verified.By)
	})

	s.Run("re-verifying overwrites the stamp with the latest caller", func() {
		doc := s.upload()
		second := s.addUser(id.RoleCaseworker)

		_, err := s.svc.SetVerified(context.Background(), s.caseworker, doc.ID, true)
		s.Require().NoError(err)
		verified, err := s.svc.SetVerified(context.Background(), second, doc.ID, true)
		s.Require().NoError(err)
		s.Equal(second, verified.Verified.By)
	})

	s.Run("unverifying clears the stamp entirely", func() {
		doc := s.upload()

		_, err := s.svc.SetVerified(context.Background(), s.caseworker, doc.ID, true)
		s.Require().NoError(err)
		cleared, err := s.svc.SetVerified(context.Background(), s.caseworker, doc.ID, false)
		s.Require().NoError(err)
		s.Nil(cleared.Verified)
		s.Len(s.events.ByAction(audit.EventDocumentUnverified), 1)
	})

	s.Run("rejects an applicant caller", func() {
		doc := s.upload()

		_, err := s.svc.SetVerified(context.Background(), s.applicant, doc.ID, true)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func (s *DocumentServiceSuite) TestListAndOpen() {
	s.Run("lists documents in upload order", func() {
		first := s.upload()
		req := s.uploadRequest()
		req.Type = models.TypeKK
		req.FileName = "kk.pdf"
		second, err := s.svc.Upload(context.Background(), s.applicant, req, strings.NewReader("kk bytes"))
		s.Require().NoError(err)

		docs, err := s.svc.ListByApplication(context.Background(), id.RoleApplicant, s.applicant, s.appID)
		s.Require().NoError(err)
		s.Require().Len(docs, 2)
		s.Equal(first.ID, docs[0].ID)
		s.Equal(second.ID, docs[1].ID)
	})

	s.Run("opens the stored bytes for the owner", func() {
		doc := s.upload()

		got, rc, err := s.svc.Open(context.Background(), id.RoleApplicant, s.applicant, doc.ID)
		s.Require().NoError(err)
		defer rc.Close()
		s.Equal(doc.ID, got.ID)
	})

	s.Run("hides downloads from other applicants", func() {
		doc := s.upload()

		_, _, err := s.svc.Open(context.Background(), id.RoleApplicant, s.intruder, doc.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
