package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clavis/internal/sentinel"
	"clavis/internal/tenant/models"
	id "clavis/pkg/domain"
)

func newTenant(t *testing.T, name string) *models.Tenant {
	t.Helper()
	tenant, err := models.New(id.NewTenantID(), name, time.Now())
	require.NoError(t, err)
	return tenant
}

func TestCreateAndFind(t *testing.T) {
	store := NewInMemoryTenantStore()
	ctx := context.Background()

	tenant := newTenant(t, "Acme")
	require.NoError(t, store.Create(ctx, tenant))

	byID, err := store.FindByID(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", byID.Name)

	byName, err := store.FindByName(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, byName.ID)
}

func TestCreate_DuplicateNameCaseInsensitive(t *testing.T) {
	store := NewInMemoryTenantStore()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, newTenant(t, "Acme")))

	err := store.Create(ctx, newTenant(t, "ACME"))
	assert.ErrorIs(t, err, sentinel.ErrAlreadyUsed)
}

func TestFind_NotFound(t *testing.T) {
	store := NewInMemoryTenantStore()
	ctx := context.Background()

	_, err := store.FindByID(ctx, id.NewTenantID())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	_, err = store.FindByName(ctx, "ghost")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestUpdate(t *testing.T) {
	store := NewInMemoryTenantStore()
	ctx := context.Background()

	tenant := newTenant(t, "Acme")
	require.NoError(t, store.Create(ctx, tenant))

	require.NoError(t, tenant.Rename("Acme Corp", time.Now()))
	require.NoError(t, store.Update(ctx, tenant))

	found, err := store.FindByID(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", found.Name)
}

func TestUpdate_NameCollision(t *testing.T) {
	store := NewInMemoryTenantStore()
	ctx := context.Background()

	acme := newTenant(t, "Acme")
	globex := newTenant(t, "Globex")
	require.NoError(t, store.Create(ctx, acme))
	require.NoError(t, store.Create(ctx, globex))

	require.NoError(t, globex.Rename("acme", time.Now()))
	err := store.Update(ctx, globex)
	assert.ErrorIs(t, err, sentinel.ErrAlreadyUsed)
}

func TestDelete(t *testing.T) {
	store := NewInMemoryTenantStore()
	ctx := context.Background()

	tenant := newTenant(t, "Acme")
	require.NoError(t, store.Create(ctx, tenant))
	require.NoError(t, store.Delete(ctx, tenant.ID))

	_, err := store.FindByID(ctx, tenant.ID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	assert.ErrorIs(t, store.Delete(ctx, tenant.ID), sentinel.ErrNotFound)
}

func TestList_Pagination(t *testing.T) {
	store := NewInMemoryTenantStore()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		tenant, err := models.New(id.NewTenantID(), fmt.Sprintf("Tenant %d", i), time.Date(2026, 1, 1, 0, i, 0, 0, time.UTC))
		require.NoError(t, err)
		require.NoError(t, store.Create(ctx, tenant))
	}

	all, err := store.List(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, all, 5)

	page, err := store.List(ctx, 3, 10)
	require.NoError(t, err)
	assert.Len(t, page, 2)
}
