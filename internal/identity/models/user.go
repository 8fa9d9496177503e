package models

import (
	"strings"
	"time"

	id "adopsi/pkg/domain"
	dErrors "adopsi/pkg/domain-errors"
)

// User is the identity tracked by the service: an applicant who owns
// applications, or a caseworker who reviews them.
type User struct {
	ID           id.UserID
	Email        string
	PasswordHash string
	FullName     string
	Phone        *string
	Role         id.Role
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RegisterRequest carries registration input from the transport layer.
type RegisterRequest struct {
	Email    string
	Password string
	FullName string
	Phone    *string
	Role     id.Role
}

// Normalize trims surrounding whitespace and lowercases the email.
func (r *RegisterRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.FullName = strings.TrimSpace(r.FullName)
}

// Validate enforces registration invariants.
func (r *RegisterRequest) Validate() error {
	if r.Email == "" || !strings.Contains(r.Email, "@") {
		return dErrors.New(dErrors.CodeValidation, "a valid email is required")
	}
	if len(r.Password) < 8 {
		return dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters")
	}
	if len(r.FullName) < 2 {
		return dErrors.New(dErrors.CodeValidation, "full name must be at least 2 characters")
	}
	if !r.Role.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid role")
	}
	return nil
}
