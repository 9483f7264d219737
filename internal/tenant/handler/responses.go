package handler

import (
	"time"

	"clavis/internal/tenant/models"
	usermodels "clavis/internal/user/models"
)

// HTTP Response DTOs.

type TenantResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toTenantResponse(tenant *models.Tenant) *TenantResponse {
	return &TenantResponse{
		ID:        tenant.ID.String(),
		Name:      tenant.Name,
		CreatedAt: tenant.CreatedAt,
		UpdatedAt: tenant.UpdatedAt,
	}
}

type TenantMemberResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name,omitempty"`
	Active    bool   `json:"is_active"`
	Superuser bool   `json:"is_superuser"`
}

type TenantDetailsResponse struct {
	TenantResponse
	Users []*TenantMemberResponse `json:"users"`
}

func toTenantDetailsResponse(tenant *models.Tenant, members []*usermodels.User) *TenantDetailsResponse {
	users := make([]*TenantMemberResponse, len(members))
	for i, u := range members {
		users[i] = &TenantMemberResponse{
			ID:        u.ID.String(),
			Email:     u.Email,
			FullName:  u.FullName,
			Active:    u.Active,
			Superuser: u.Superuser,
		}
	}
	return &TenantDetailsResponse{
		TenantResponse: *toTenantResponse(tenant),
		Users:          users,
	}
}

type TenantListResponse struct {
	Tenants []*TenantResponse `json:"tenants"`
	Count   int               `json:"count"`
}

func toTenantListResponse(tenants []*models.Tenant) *TenantListResponse {
	out := make([]*TenantResponse, len(tenants))
	for i, t := range tenants {
		out[i] = toTenantResponse(t)
	}
	return &TenantListResponse{Tenants: out, Count: len(out)}
}
