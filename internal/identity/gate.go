// Package identity resolves callers and decides whether a role may act.
// Every core operation consults the Gate before touching an application or
// document; the caller identity is always an explicit parameter, never
// ambient state.
package identity

import (
	"context"
	"errors"

	"adopsi/internal/identity/models"
	id "adopsi/pkg/domain"
	dErrors "adopsi/pkg/domain-errors"
	"adopsi/pkg/platform/sentinel"
)

// Directory is the user lookup the gate depends on.
type Directory interface {
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
}

// Gate enforces the role and activity rules shared by all operations:
// applicants act only on what they own (ownership itself is checked by the
// owning service against the loaded record), caseworkers act on anything but
// must be active, and an unrecognized role is a hard Forbidden.
type Gate struct {
	users Directory
}

func NewGate(users Directory) *Gate {
	return &Gate{users: users}
}

// RequireApplicant resolves the caller and verifies they are an active
// applicant. A missing caller ID is reported as Unauthorized, distinct from
// Forbidden, to aid diagnosis.
func (g *Gate) RequireApplicant(ctx context.Context, callerID id.UserID) (*models.User, error) {
	return g.require(ctx, callerID, id.RoleApplicant)
}

// RequireCaseworker resolves the caller and verifies they are an active
// caseworker.
func (g *Gate) RequireCaseworker(ctx context.Context, callerID id.UserID) (*models.User, error) {
	return g.require(ctx, callerID, id.RoleCaseworker)
}

func (g *Gate) require(ctx context.Context, callerID id.UserID, want id.Role) (*models.User, error) {
	if callerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	user, err := g.users.FindByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve caller")
	}
	switch user.Role {
	case want:
		// fall through to the active check
	case id.RoleApplicant, id.RoleCaseworker:
		return nil, dErrors.Newf(dErrors.CodeForbidden, "operation requires role %s", want)
	default:
		return nil, dErrors.New(dErrors.CodeForbidden, "unrecognized role")
	}
	if !user.Active {
		return nil, dErrors.New(dErrors.CodeForbidden, "account is inactive")
	}
	return user, nil
}

// CheckReadAccess validates the (role, callerID) pair accompanying a read
// operation. Applicant reads require a caller ID; the owning service then
// filters to the caller's own records. Caseworker reads see everything.
func (g *Gate) CheckReadAccess(role id.Role, callerID id.UserID) error {
	switch role {
	case id.RoleApplicant:
		if callerID.IsNil() {
			return dErrors.New(dErrors.CodeUnauthorized, "caller identity is required for applicant reads")
		}
		return nil
	case id.RoleCaseworker:
		return nil
	default:
		return dErrors.New(dErrors.CodeForbidden, "unrecognized role")
	}
}
