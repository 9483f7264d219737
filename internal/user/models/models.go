// Package models contains the pure user domain entity. It carries no
// transport concerns; HTTP representations live in the handler packages.
package models

import (
	"strings"
	"time"

	id "clavis/pkg/domain"
	dErrors "clavis/pkg/domain-errors"
)

const maxEmailLength = 255

// User represents an authenticable principal. The password hash is opaque
// write-only state and must never appear in any externally observable
// representation; handler packages build response DTOs by hand instead of
// serializing this struct.
type User struct {
	ID           id.UserID
	Email        string
	PasswordHash string
	FullName     string
	Active       bool
	Superuser    bool

	// TenantID is the owning tenant, or the nil UUID when the user exists
	// outside any tenant (e.g. a global superuser).
	TenantID id.TenantID

	CreatedAt time.Time
	UpdatedAt time.Time
}

// New constructs a user with defaults applied: active, not a superuser.
// The caller supplies an already-hashed password; plaintext never reaches
// this package.
func New(userID id.UserID, email, passwordHash string, now time.Time) (*User, error) {
	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "password hash cannot be empty")
	}
	return &User{
		ID:           userID,
		Email:        email,
		PasswordHash: passwordHash,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// HasTenant reports whether the user belongs to a tenant.
func (u *User) HasTenant() bool {
	return !u.TenantID.IsNil()
}

// NormalizeEmail lowercases and trims an email so uniqueness checks and
// login lookups agree on a canonical form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail applies the minimal structural checks done at this layer.
// Full RFC validation is out of scope; the store's unique index is the
// final arbiter of identity.
func ValidateEmail(email string) error {
	if email == "" {
		return dErrors.New(dErrors.CodeValidation, "email cannot be empty")
	}
	if len(email) > maxEmailLength {
		return dErrors.New(dErrors.CodeValidation, "email must be 255 characters or less")
	}
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return dErrors.New(dErrors.CodeValidation, "email is not valid")
	}
	return nil
}
