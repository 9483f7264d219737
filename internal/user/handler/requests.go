package handler

import (
	"strings"

	"clavis/internal/user/service"
	id "clavis/pkg/domain"
	dErrors "clavis/pkg/domain-errors"
)

// HTTP Request DTOs - contain JSON tags for API serialization.
// These are converted to service commands before processing.

type CreateUserRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FullName  string `json:"full_name"`
	Superuser bool   `json:"is_superuser"`
	TenantID  string `json:"tenant_id"`
}

func (r *CreateUserRequest) Normalize() {
	if r == nil {
		return
	}
	r.Email = strings.TrimSpace(r.Email)
	r.FullName = strings.TrimSpace(r.FullName)
	r.TenantID = strings.TrimSpace(r.TenantID)
}

func (r *CreateUserRequest) Validate() error {
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

// ToCommand converts the HTTP request to a service command.
func (r *CreateUserRequest) ToCommand() (service.CreateCommand, error) {
	cmd := service.CreateCommand{
		Email:     r.Email,
		Password:  r.Password,
		FullName:  r.FullName,
		Superuser: r.Superuser,
	}
	if r.TenantID != "" {
		tenantID, err := id.ParseTenantID(r.TenantID)
		if err != nil {
			return service.CreateCommand{}, err
		}
		cmd.TenantID = tenantID
	}
	return cmd, nil
}

// UpdateUserRequest is a partial update: absent fields are left untouched.
// An explicit `"tenant_id": ""` detaches the user from its tenant.
type UpdateUserRequest struct {
	Email     *string `json:"email,omitempty"`
	Password  *string `json:"password,omitempty"`
	FullName  *string `json:"full_name,omitempty"`
	Active    *bool   `json:"is_active,omitempty"`
	Superuser *bool   `json:"is_superuser,omitempty"`
	TenantID  *string `json:"tenant_id,omitempty"`
}

func (r *UpdateUserRequest) Normalize() {
	if r == nil {
		return
	}
	if r.Email != nil {
		trimmed := strings.TrimSpace(*r.Email)
		r.Email = &trimmed
	}
	if r.FullName != nil {
		trimmed := strings.TrimSpace(*r.FullName)
		r.FullName = &trimmed
	}
	if r.TenantID != nil {
		trimmed := strings.TrimSpace(*r.TenantID)
		r.TenantID = &trimmed
	}
}

func (r *UpdateUserRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.Email != nil && *r.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "email cannot be empty")
	}
	if r.Password != nil && *r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "password cannot be empty")
	}
	return nil
}

// ToCommand converts the HTTP request to a service command.
func (r *UpdateUserRequest) ToCommand() (service.UpdateCommand, error) {
	cmd := service.UpdateCommand{
		Email:     r.Email,
		Password:  r.Password,
		FullName:  r.FullName,
		Active:    r.Active,
		Superuser: r.Superuser,
	}
	if r.TenantID != nil {
		var tenantID id.TenantID
		if *r.TenantID != "" {
			parsed, err := id.ParseTenantID(*r.TenantID)
			if err != nil {
				return service.UpdateCommand{}, err
			}
			tenantID = parsed
		}
		cmd.TenantID = &tenantID
	}
	return cmd, nil
}
