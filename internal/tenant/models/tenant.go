package models

import (
	"strings"
	"time"

	id "clavis/pkg/domain"
	dErrors "clavis/pkg/domain-errors"
)

const maxTenantNameLength = 100

// Tenant represents an isolated organization namespace. A tenant exclusively
// owns its users: deleting the tenant removes them.
type Tenant struct {
	ID        id.TenantID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// New constructs a tenant, validating the name invariant (1-100 chars).
func New(tenantID id.TenantID, name string, now time.Time) (*Tenant, error) {
	name = strings.TrimSpace(name)
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	return &Tenant{
		ID:        tenantID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Rename changes the tenant name. Uniqueness against other tenants is the
// store's responsibility; this only enforces the local invariant.
func (t *Tenant) Rename(name string, now time.Time) error {
	name = strings.TrimSpace(name)
	if err := ValidateName(name); err != nil {
		return err
	}
	t.Name = name
	t.UpdatedAt = now
	return nil
}

// ValidateName enforces the tenant name length invariant.
func ValidateName(name string) error {
	if name == "" {
		return dErrors.New(dErrors.CodeValidation, "tenant name cannot be empty")
	}
	if len(name) > maxTenantNameLength {
		return dErrors.New(dErrors.CodeValidation, "tenant name must be 100 characters or less")
	}
	return nil
}
