package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"adopsi/internal/audit"
	"adopsi/internal/identity/models"
	"adopsi/internal/identity/revocation"
	identitystore "adopsi/internal/identity/store"
	"adopsi/internal/jwttoken"
	id "adopsi/pkg/domain"
	dErrors "adopsi/pkg/domain-errors"
)

type IdentityServiceSuite struct {
	suite.Suite

	users  *identitystore.InMemoryUserStore
	events *audit.InMemoryStore
	trl    *revocation.MemoryTRL
	svc    *Service
}

func TestIdentityServiceSuite(t *testing.T) {
	suite.Run(t, new(IdentityServiceSuite))
}

func (s *IdentityServiceSuite) SetupTest() {
	s.users = identitystore.NewInMemoryUserStore()
	s.events = audit.NewInMemoryStore()
	s.trl = revocation.NewMemoryTRL()
	tokens := jwttoken.NewService("test-signing-key", "adopsi-test")
	s.svc = New(s.users, tokens, time.Hour,
		WithAuditPublisher(audit.NewPublisher(s.events)),
		WithRevocationList(s.trl),
	)
}

func registerRequest() models.RegisterRequest {
	return models.RegisterRequest{
		Email:    "budi@example.com",
		Password: "correct-horse",
		FullName: "Budi Santoso",
		Role:     id.RoleApplicant,
	}
}

func (s *IdentityServiceSuite) TestRegister() {
	s.Run("creates an active account and never stores the raw password", func() {
		user, err := s.svc.Register(context.Background(), registerRequest())
		s.Require().NoError(err)
		s.True(user.Active)
		s.NotEqual("correct-horse", user.PasswordHash)
		s.Len(s.events.ByAction(audit.EventUserRegistered), 1)
	})

	s.Run("normalizes the email before storing", func() {
		req := registerRequest()
		req.Email = "  MIXED@Example.COM "
		user, err := s.svc.Register(context.Background(), req)
		s.Require().NoError(err)
		s.Equal("mixed@example.com", user.Email)
	})

	s.Run("rejects a duplicate email as conflict", func() {
		req := registerRequest()
		req.Email = "dup@example.com"
		_, err := s.svc.Register(context.Background(), req)
		s.Require().NoError(err)

		_, err = s.svc.Register(context.Background(), req)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("rejects a short password", func() {
		req := registerRequest()
		req.Password = "short"
		_, err := s.svc.Register(context.Background(), req)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *IdentityServiceSuite) TestLogin() {
	// SetupTest runs once per test method, so the account is shared by the
	// subtests below.
	_, err := s.svc.Register(context.Background(), registerRequest())
	s.Require().NoError(err)

	s.Run("issues a token for valid credentials", func() {
		user, token, err := s.svc.Login(context.Background(), "budi@example.com", "correct-horse")
		s.Require().NoError(err)
		s.NotEmpty(token)
		s.Equal("budi@example.com", user.Email)
	})

	s.Run("uses one error for unknown email and wrong password", func() {
		_, _, unknownErr := s.svc.Login(context.Background(), "nobody@example.com", "whatever9")
		_, _, wrongErr := s.svc.Login(context.Background(), "budi@example.com", "not-the-password")

		s.True(dErrors.HasCode(unknownErr, dErrors.CodeUnauthorized))
		s.True(dErrors.HasCode(wrongErr, dErrors.CodeUnauthorized))
		s.Equal(dErrors.MessageOf(unknownErr), dErrors.MessageOf(wrongErr))
	})

	s.Run("records failed attempts in the audit trail", func() {
		_, _, err := s.svc.Login(context.Background(), "ghost@example.com", "whatever9")
		s.Require().Error(err)
		s.NotEmpty(s.events.ByAction(audit.EventLoginFailed))
	})
}

func (s *IdentityServiceSuite) TestLogout() {
	s.Run("revokes the token id", func() {
		s.Require().NoError(s.svc.Logout(context.Background(), "some-jti"))

		revoked, err := s.trl.IsRevoked(context.Background(), "some-jti")
		s.Require().NoError(err)
		s.True(revoked)
	})

	s.Run("ignores an empty token id", func() {
		s.Require().NoError(s.svc.Logout(context.Background(), ""))
	})
}

func (s *IdentityServiceSuite) TestCurrentUser() {
	s.Run("requires a caller identity", func() {
		_, err := s.svc.CurrentUser(context.Background(), id.UserID{})
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("reports an unknown caller as not found", func() {
		_, err := s.svc.CurrentUser(context.Background(), id.NewUserID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
