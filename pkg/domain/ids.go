// Package domain holds value types shared across the service core: typed
// identifiers and the closed role enumeration. Constructing them through the
// Parse functions enforces the trust-boundary invariants; direct casting
// bypasses validation.
package domain

import (
	"github.com/google/uuid"

	dErrors "adopsi/pkg/domain-errors"
)

// Typed IDs prevent cross-entity assignment at compile time: an ApplicationID
// can never be passed where a UserID is expected.
type (
	// UserID identifies a user (applicant or caseworker).
	UserID uuid.UUID
	// ApplicationID identifies an adoption application.
	ApplicationID uuid.UUID
	// DocumentID identifies an uploaded supporting document.
	DocumentID uuid.UUID
)

// NewUserID returns a fresh random user ID.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewApplicationID returns a fresh random application ID.
func NewApplicationID() ApplicationID { return ApplicationID(uuid.New()) }

// NewDocumentID returns a fresh random document ID.
func NewDocumentID() DocumentID { return DocumentID(uuid.New()) }

func (id UserID) String() string        { return uuid.UUID(id).String() }
func (id ApplicationID) String() string { return uuid.UUID(id).String() }
func (id DocumentID) String() string    { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id ApplicationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id DocumentID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// ParseUserID constructs a UserID from external input.
// Errors: CodeInvalidInput when the value is empty, malformed, or the nil UUID.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user id")
	return UserID(u), err
}

// ParseApplicationID constructs an ApplicationID from external input.
func ParseApplicationID(s string) (ApplicationID, error) {
	u, err := parseUUID(s, "application id")
	return ApplicationID(u), err
}

// ParseDocumentID constructs a DocumentID from external input.
func ParseDocumentID(s string) (DocumentID, error) {
	u, err := parseUUID(s, "document id")
	return DocumentID(u), err
}

func parseUUID(s, what string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s cannot be empty", what)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "invalid %s", what)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s cannot be the nil UUID", what)
	}
	return u, nil
}
