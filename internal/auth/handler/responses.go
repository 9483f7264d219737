package handler

import (
	"time"

	"clavis/internal/auth/service"
	"clavis/internal/user/models"
)

// HTTP Response DTOs. The password hash never appears here.

type TokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

func toTokenPairResponse(pair *service.TokenPair) *TokenPairResponse {
	return &TokenPairResponse{
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
		TokenType:    "bearer",
	}
}

type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name,omitempty"`
	Active    bool      `json:"is_active"`
	Superuser bool      `json:"is_superuser"`
	TenantID  *string   `json:"tenant_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toUserResponse(user *models.User) *UserResponse {
	resp := &UserResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		FullName:  user.FullName,
		Active:    user.Active,
		Superuser: user.Superuser,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
	if user.HasTenant() {
		tid := user.TenantID.String()
		resp.TenantID = &tid
	}
	return resp
}
