package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clavis/internal/sentinel"
	"clavis/internal/user/models"
	id "clavis/pkg/domain"
)

func newUser(t *testing.T, email string) *models.User {
	t.Helper()
	user, err := models.New(id.NewUserID(), email, "hash", time.Now())
	require.NoError(t, err)
	return user
}

func TestCreateAndFind(t *testing.T) {
	store := NewInMemoryUserStore()
	ctx := context.Background()

	user := newUser(t, "alice@example.com")
	require.NoError(t, store.Create(ctx, user))

	byID, err := store.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, byID.Email)

	byEmail, err := store.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
}

func TestCreate_DuplicateEmailCaseInsensitive(t *testing.T) {
	store := NewInMemoryUserStore()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, newUser(t, "alice@example.com")))

	err := store.Create(ctx, newUser(t, "ALICE@example.com"))
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel.ErrAlreadyUsed)
}

func TestFind_NotFound(t *testing.T) {
	store := NewInMemoryUserStore()
	ctx := context.Background()

	_, err := store.FindByID(ctx, id.NewUserID())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	_, err = store.FindByEmail(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestUpdate(t *testing.T) {
	store := NewInMemoryUserStore()
	ctx := context.Background()

	user := newUser(t, "alice@example.com")
	require.NoError(t, store.Create(ctx, user))

	user.FullName = "Alice A."
	user.Active = false
	require.NoError(t, store.Update(ctx, user))

	found, err := store.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice A.", found.FullName)
	assert.False(t, found.Active)
}

func TestUpdate_EmailCollision(t *testing.T) {
	store := NewInMemoryUserStore()
	ctx := context.Background()

	alice := newUser(t, "alice@example.com")
	bob := newUser(t, "bob@example.com")
	require.NoError(t, store.Create(ctx, alice))
	require.NoError(t, store.Create(ctx, bob))

	bob.Email = "alice@example.com"
	err := store.Update(ctx, bob)
	assert.ErrorIs(t, err, sentinel.ErrAlreadyUsed)
}

func TestUpdate_NotFound(t *testing.T) {
	store := NewInMemoryUserStore()

	err := store.Update(context.Background(), newUser(t, "ghost@example.com"))
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestDelete(t *testing.T) {
	store := NewInMemoryUserStore()
	ctx := context.Background()

	user := newUser(t, "alice@example.com")
	require.NoError(t, store.Create(ctx, user))
	require.NoError(t, store.Delete(ctx, user.ID))

	_, err := store.FindByID(ctx, user.ID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	assert.ErrorIs(t, store.Delete(ctx, user.ID), sentinel.ErrNotFound)
}

func TestList_OrderAndPagination(t *testing.T) {
	store := NewInMemoryUserStore()
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		user, err := models.New(id.NewUserID(), fmt.Sprintf("user%d@example.com", i), "hash", base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
		require.NoError(t, store.Create(ctx, user))
	}

	all, err := store.List(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, all, 5)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].CreatedAt.Before(all[i-1].CreatedAt))
	}

	page, err := store.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, all[2].ID, page[0].ID)
	assert.Equal(t, all[3].ID, page[1].ID)

	empty, err := store.List(ctx, 10, 2)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestFindByTenant(t *testing.T) {
	store := NewInMemoryUserStore()
	ctx := context.Background()
	tenantID := id.NewTenantID()

	member := newUser(t, "member@example.com")
	member.TenantID = tenantID
	outsider := newUser(t, "outsider@example.com")
	require.NoError(t, store.Create(ctx, member))
	require.NoError(t, store.Create(ctx, outsider))

	owned, err := store.FindByTenant(ctx, tenantID)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, member.ID, owned[0].ID)
}

func TestDeleteByTenant(t *testing.T) {
	store := NewInMemoryUserStore()
	ctx := context.Background()
	tenantID := id.NewTenantID()

	for i := 0; i < 3; i++ {
		user := newUser(t, fmt.Sprintf("member%d@example.com", i))
		user.TenantID = tenantID
		require.NoError(t, store.Create(ctx, user))
	}
	outsider := newUser(t, "outsider@example.com")
	require.NoError(t, store.Create(ctx, outsider))

	removed, err := store.DeleteByTenant(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	// Idempotent on repeat.
	removed, err = store.DeleteByTenant(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)

	_, err = store.FindByID(ctx, outsider.ID)
	require.NoError(t, err)
}

func TestStoredStateIsNotAliased(t *testing.T) {
	store := NewInMemoryUserStore()
	ctx := context.Background()

	user := newUser(t, "alice@example.com")
	require.NoError(t, store.Create(ctx, user))

	found, err := store.FindByID(ctx, user.ID)
	require.NoError(t, err)
	found.Email = "mutated@example.com"

	again, err := store.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", again.Email)
}
