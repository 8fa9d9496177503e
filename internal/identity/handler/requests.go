package handler

import (
	"adopsi/internal/identity/models"
	id "adopsi/pkg/domain"
	dErrors "adopsi/pkg/domain-errors"
)

// RegisterRequest is the HTTP request for POST /auth/register.
type RegisterRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName string  `json:"full_name"`
	Phone    *string `json:"phone,omitempty"`
	Role     string  `json:"role"`
}

// ToDomain converts the HTTP request to the domain registration request.
func (r *RegisterRequest) ToDomain() (models.RegisterRequest, error) {
	role, err := id.ParseRole(r.Role)
	if err != nil {
		return models.RegisterRequest{}, dErrors.New(dErrors.CodeValidation, "invalid role")
	}
	return models.RegisterRequest{
		Email:    r.Email,
		Password: r.Password,
		FullName: r.FullName,
		Phone:    r.Phone,
		Role:     role,
	}, nil
}

// LoginRequest is the HTTP request for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
