package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"clavis/internal/sentinel"
	"clavis/internal/user/models"
	id "clavis/pkg/domain"
)

// Error Contract:
// All store methods follow this pattern:
// - Return sentinel.ErrNotFound (wrapped) when the requested entity does not exist
// - Return sentinel.ErrAlreadyUsed (wrapped) on a uniqueness violation
// - Return nil for successful operations

// InMemoryUserStore stores users in memory, guarded by an RWMutex. It backs
// tests and local development; PostgresUserStore is the production store.
type InMemoryUserStore struct {
	mu    sync.RWMutex
	users map[id.UserID]*models.User
}

// NewInMemoryUserStore constructs an empty in-memory user store.
func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{users: make(map[id.UserID]*models.User)}
}

// Create inserts the user, enforcing global email uniqueness as the
// authoritative backstop for racing registrations.
func (s *InMemoryUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return fmt.Errorf("email already registered: %w", sentinel.ErrAlreadyUsed)
		}
	}
	s.users[user.ID] = cloneUser(user)
	return nil
}

func (s *InMemoryUserStore) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if user, ok := s.users[userID]; ok {
		return cloneUser(user), nil
	}
	return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			return cloneUser(user), nil
		}
	}
	return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
}

// Update replaces the stored user, re-checking email uniqueness against
// every other user.
func (s *InMemoryUserStore) Update(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	for otherID, other := range s.users {
		if otherID != user.ID && strings.EqualFold(other.Email, user.Email) {
			return fmt.Errorf("email already registered: %w", sentinel.ErrAlreadyUsed)
		}
	}
	s.users[user.ID] = cloneUser(user)
	return nil
}

func (s *InMemoryUserStore) Delete(_ context.Context, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	delete(s.users, userID)
	return nil
}

// List returns users ordered by creation time, then ID for a stable order
// between equal timestamps.
func (s *InMemoryUserStore) List(_ context.Context, offset, limit int) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]*models.User, 0, len(s.users))
	for _, user := range s.users {
		all = append(all, cloneUser(user))
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].ID.String() < all[j].ID.String()
	})
	return paginate(all, offset, limit), nil
}

// FindByTenant returns every user owned by the tenant.
func (s *InMemoryUserStore) FindByTenant(_ context.Context, tenantID id.TenantID) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var owned []*models.User
	for _, user := range s.users {
		if user.TenantID == tenantID {
			owned = append(owned, cloneUser(user))
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		return owned[i].CreatedAt.Before(owned[j].CreatedAt)
	})
	return owned, nil
}

// DeleteByTenant removes every user owned by the tenant and reports how
// many were removed. Deleting zero users is not an error; the cascade is
// idempotent.
func (s *InMemoryUserStore) DeleteByTenant(_ context.Context, tenantID id.TenantID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for userID, user := range s.users {
		if user.TenantID == tenantID {
			delete(s.users, userID)
			removed++
		}
	}
	return removed, nil
}

func paginate(users []*models.User, offset, limit int) []*models.User {
	if offset >= len(users) {
		return nil
	}
	users = users[offset:]
	if limit > 0 && limit < len(users) {
		users = users[:limit]
	}
	return users
}

// cloneUser keeps callers from mutating stored state through shared pointers.
func cloneUser(u *models.User) *models.User {
	c := *u
	return &c
}
