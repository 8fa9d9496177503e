package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"adopsi/internal/audit"
	"adopsi/internal/identity/models"
	id "adopsi/pkg/domain"
	dErrors "adopsi/pkg/domain-errors"
	"adopsi/pkg/platform/sentinel"
	"adopsi/pkg/requestcontext"
)

// bcryptCost matches the cost the original deployment used.
const bcryptCost = 10

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type TokenIssuer interface {
	GenerateAccessToken(userID id.UserID, role id.Role, expiresIn time.Duration) (string, error)
}

type RevocationList interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service handles registration, login, and the current-user lookup.
type Service struct {
	users       UserStore
	tokens      TokenIssuer
	revocations RevocationList
	tokenTTL    time.Duration
	logger      *slog.Logger
	auditor     AuditPublisher
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.auditor = publisher }
}

func WithRevocationList(trl RevocationList) Option {
	return func(s *Service) { s.revocations = trl }
}

func New(users UserStore, tokens TokenIssuer, tokenTTL time.Duration, opts ...Option) *Service {
	s := &Service{
		users:    users,
		tokens:   tokens,
		tokenTTL: tokenTTL,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a new active account. Email uniqueness is enforced by the
// store; a duplicate surfaces as Conflict.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	now := requestcontext.Now(ctx)
	user := &models.User{
		ID:           id.NewUserID(),
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Phone:        req.Phone,
		Role:         req.Role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "a user with this email already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	s.emit(ctx, audit.EventUserRegistered, user.ID, "")
	return user, nil
}

// Login verifies credentials and issues an access token. Unknown email and
// wrong password produce the same error so account existence does not leak.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.emit(ctx, audit.EventLoginFailed, id.UserID{}, "unknown email")
			return nil, "", dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
		}
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}
	if !user.Active {
		s.emit(ctx, audit.EventLoginFailed, user.ID, "account deactivated")
		return nil, "", dErrors.New(dErrors.CodeForbidden, "account is deactivated")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.emit(ctx, audit.EventLoginFailed, user.ID, "wrong password")
		return nil, "", dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
	}

	token, err := s.tokens.GenerateAccessToken(user.ID, user.Role, s.tokenTTL)
	if err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	s.emit(ctx, audit.EventUserLoggedIn, user.ID, "")
	return user, token, nil
}

// CurrentUser returns the active account behind a caller ID. Inactive accounts
// are reported as NotFound, matching the login-session semantics of the UI.
func (s *Service) CurrentUser(ctx context.Context, userID id.UserID) (*models.User, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}
	if !user.Active {
		return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	return user, nil
}

// Logout revokes the caller's token ID for the remaining token lifetime.
// Without a configured revocation list this is a no-op.
func (s *Service) Logout(ctx context.Context, jti string) error {
	if s.revocations == nil || jti == "" {
		return nil
	}
	if err := s.revocations.RevokeToken(ctx, jti, s.tokenTTL); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke token")
	}
	return nil
}

func (s *Service) emit(ctx context.Context, action audit.EventAction, userID id.UserID, reason string) {
	if s.auditor == nil {
		return
	}
	err := s.auditor.Emit(ctx, audit.Event{
		Action:    action,
		ActorID:   userID,
		Reason:    reason,
		RequestID: requestcontext.RequestID(ctx),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "action", string(action), "error", err)
	}
}
