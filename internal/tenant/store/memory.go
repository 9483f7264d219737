package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"clavis/internal/sentinel"
	"clavis/internal/tenant/models"
	id "clavis/pkg/domain"
)

// InMemoryTenantStore stores tenants in memory, guarded by an RWMutex.
// Name uniqueness is enforced case-insensitively, mirroring the unique
// index of the PostgreSQL store.
type InMemoryTenantStore struct {
	mu      sync.RWMutex
	tenants map[id.TenantID]*models.Tenant
}

// NewInMemoryTenantStore constructs an empty in-memory tenant store.
func NewInMemoryTenantStore() *InMemoryTenantStore {
	return &InMemoryTenantStore{tenants: make(map[id.TenantID]*models.Tenant)}
}

func (s *InMemoryTenantStore) Create(_ context.Context, tenant *models.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.tenants {
		if strings.EqualFold(existing.Name, tenant.Name) {
			return fmt.Errorf("tenant name already taken: %w", sentinel.ErrAlreadyUsed)
		}
	}
	s.tenants[tenant.ID] = cloneTenant(tenant)
	return nil
}

func (s *InMemoryTenantStore) FindByID(_ context.Context, tenantID id.TenantID) (*models.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if tenant, ok := s.tenants[tenantID]; ok {
		return cloneTenant(tenant), nil
	}
	return nil, fmt.Errorf("tenant not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryTenantStore) FindByName(_ context.Context, name string) (*models.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, tenant := range s.tenants {
		if strings.EqualFold(tenant.Name, name) {
			return cloneTenant(tenant), nil
		}
	}
	return nil, fmt.Errorf("tenant not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryTenantStore) Update(_ context.Context, tenant *models.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tenants[tenant.ID]; !ok {
		return fmt.Errorf("tenant not found: %w", sentinel.ErrNotFound)
	}
	for otherID, other := range s.tenants {
		if otherID != tenant.ID && strings.EqualFold(other.Name, tenant.Name) {
			return fmt.Errorf("tenant name already taken: %w", sentinel.ErrAlreadyUsed)
		}
	}
	s.tenants[tenant.ID] = cloneTenant(tenant)
	return nil
}

func (s *InMemoryTenantStore) Delete(_ context.Context, tenantID id.TenantID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tenants[tenantID]; !ok {
		return fmt.Errorf("tenant not found: %w", sentinel.ErrNotFound)
	}
	delete(s.tenants, tenantID)
	return nil
}

func (s *InMemoryTenantStore) List(_ context.Context, offset, limit int) ([]*models.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]*models.Tenant, 0, len(s.tenants))
	for _, tenant := range s.tenants {
		all = append(all, cloneTenant(tenant))
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].ID.String() < all[j].ID.String()
	})
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func cloneTenant(t *models.Tenant) *models.Tenant {
	c := *t
	return &c
}
