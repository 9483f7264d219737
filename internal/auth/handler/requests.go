package handler

import (
	"strings"

	"clavis/internal/auth/service"
	id "clavis/pkg/domain"
	dErrors "clavis/pkg/domain-errors"
)

// HTTP Request DTOs - contain JSON tags for API serialization.
// These are converted to service commands before processing.

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Normalize() {
	if r == nil {
		return
	}
	r.Email = strings.TrimSpace(r.Email)
}

func (r *LoginRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "password is required")
	}
	return nil
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	TenantID string `json:"tenant_id"`
}

func (r *RegisterRequest) Normalize() {
	if r == nil {
		return
	}
	r.Email = strings.TrimSpace(r.Email)
	r.FullName = strings.TrimSpace(r.FullName)
	r.TenantID = strings.TrimSpace(r.TenantID)
}

func (r *RegisterRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "password is required")
	}
	return nil
}

// ToCommand converts the HTTP request to a service command. An absent
// tenant_id leaves the user unassigned.
func (r *RegisterRequest) ToCommand() (service.RegisterCommand, error) {
	cmd := service.RegisterCommand{
		Email:    r.Email,
		Password: r.Password,
		FullName: r.FullName,
	}
	if r.TenantID != "" {
		tenantID, err := id.ParseTenantID(r.TenantID)
		if err != nil {
			return service.RegisterCommand{}, err
		}
		cmd.TenantID = tenantID
	}
	return cmd, nil
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (r *RefreshRequest) Normalize() {
	if r == nil {
		return
	}
	r.RefreshToken = strings.TrimSpace(r.RefreshToken)
}

func (r *RefreshRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.RefreshToken == "" {
		return dErrors.New(dErrors.CodeValidation, "refresh_token is required")
	}
	return nil
}
