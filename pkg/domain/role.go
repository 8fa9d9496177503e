package domain

import dErrors "adopsi/pkg/domain-errors"

// Role is the closed set of caller roles. Every authorization gate matches on
// it exhaustively: a value outside the set is a hard Forbidden, never a
// default branch.
//
// Usage: construct via ParseRole at trust boundaries to enforce the allowlist;
// direct casting bypasses validation.
type Role string

const (
	// RoleApplicant is an end user applying to adopt a child
	// (calon_pengangkut).
	RoleApplicant Role = "calon_pengangkut"
	// RoleCaseworker is an agency staff member reviewing applications
	// (admin_dinas_sosial).
	RoleCaseworker Role = "admin_dinas_sosial"
)

// validRoles is the single source of truth for recognized roles.
var validRoles = map[Role]bool{
	RoleApplicant:  true,
	RoleCaseworker: true,
}

// ParseRole constructs a Role from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported; no
// other errors are expected.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "role cannot be empty")
	}
	r := Role(s)
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid role")
	}
	return r, nil
}

// IsValid checks if the role is one of the supported enum values.
func (r Role) IsValid() bool {
	return validRoles[r]
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}
