// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"github.com/google/uuid"

	dErrors "clavis/pkg/domain-errors"
)

// Distinct ID types - compiler prevents passing UserID where TenantID is expected.
type (
	UserID   uuid.UUID
	TenantID uuid.UUID
)

// NewUserID generates a random user identifier.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewTenantID generates a random tenant identifier.
func NewTenantID() TenantID { return TenantID(uuid.New()) }

// Parse functions - use at trust boundaries (handlers, token subjects).

func ParseUserID(s string) (UserID, error) {
	id, err := parseUUID(s, "user ID")
	return UserID(id), err
}

func ParseTenantID(s string) (TenantID, error) {
	id, err := parseUUID(s, "tenant ID")
	return TenantID(id), err
}

// String methods - canonical UUID text form, also used as token subjects.

func (id UserID) String() string   { return uuid.UUID(id).String() }
func (id TenantID) String() string { return uuid.UUID(id).String() }

// IsNil checks - used for service-layer validation.

func (id UserID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id TenantID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// MarshalText/UnmarshalText let the IDs round-trip through JSON as UUID strings.

func (id UserID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }
func (id TenantID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *UserID) UnmarshalText(b []byte) error {
	parsed, err := ParseUserID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *TenantID) UnmarshalText(b []byte) error {
	parsed, err := ParseTenantID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// parseUUID is the shared validation logic. Nil UUIDs are allowed here;
// use IsNil() at the service layer for business validation.
func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label+" format")
	}
	return id, nil
}
