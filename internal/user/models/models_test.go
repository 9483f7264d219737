package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "clavis/pkg/domain"
)

func TestNew_Defaults(t *testing.T) {
	now := time.Now()
	user, err := New(id.NewUserID(), "alice@example.com", "hash", now)
	require.NoError(t, err)

	assert.True(t, user.Active)
	assert.False(t, user.Superuser)
	assert.False(t, user.HasTenant())
	assert.Equal(t, now, user.CreatedAt)
	assert.Equal(t, now, user.UpdatedAt)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "alice@example.com", NormalizeEmail("  Alice@Example.COM "))
	assert.Equal(t, "", NormalizeEmail("   "))
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("alice@example.com"))

	for _, email := range []string{"", "no-at-sign", "@leading", "trailing@", strings.Repeat("a", 250) + "@x.com"} {
		assert.Error(t, ValidateEmail(email), "email %q", email)
	}
}

func TestHasTenant(t *testing.T) {
	user, err := New(id.NewUserID(), "alice@example.com", "hash", time.Now())
	require.NoError(t, err)
	assert.False(t, user.HasTenant())

	user.TenantID = id.NewTenantID()
	assert.True(t, user.HasTenant())
}
