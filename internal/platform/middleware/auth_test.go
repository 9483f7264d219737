package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clavis/internal/platform/logger"
	"clavis/internal/user/models"
	id "clavis/pkg/domain"
	dErrors "clavis/pkg/domain-errors"
)

type stubResolver struct {
	user *models.User
	err  error
}

func (s *stubResolver) ResolveActive(_ context.Context, _ string) (*models.User, error) {
	return s.user, s.err
}

func protectedEcho(t *testing.T, resolver PrincipalResolver) http.Handler {
	t.Helper()
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := Principal(r.Context())
		require.NotNil(t, user)
		w.WriteHeader(http.StatusOK)
	})
	return RequireAuth(resolver, logger.New())(inner)
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	handler := protectedEcho(t, &stubResolver{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "unauthorized")
}

func TestRequireAuth_MalformedHeader(t *testing.T) {
	handler := protectedEcho(t, &stubResolver{})

	for _, header := range []string{"Basic abc", "Bearer", "Bearer "} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestRequireAuth_ResolverErrorPassedThrough(t *testing.T) {
	handler := protectedEcho(t, &stubResolver{
		err: dErrors.New(dErrors.CodeForbidden, "user account is inactive"),
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAuth_PrincipalInContext(t *testing.T) {
	user, err := models.New(id.NewUserID(), "alice@example.com", "hash", time.Now())
	require.NoError(t, err)

	var seen *models.User
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = Principal(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireAuth(&stubResolver{user: user}, logger.New())(inner)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, user.ID, seen.ID)
}

func TestPrincipal_EmptyContext(t *testing.T) {
	assert.Nil(t, Principal(context.Background()))
}
