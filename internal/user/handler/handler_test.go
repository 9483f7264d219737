package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"clavis/internal/auth/password"
	"clavis/internal/platform/logger"
	"clavis/internal/platform/middleware"
	tenantstore "clavis/internal/tenant/store"
	"clavis/internal/user/models"
	"clavis/internal/user/service"
	userstore "clavis/internal/user/store"
	id "clavis/pkg/domain"
)

type env struct {
	router http.Handler
	users  *userstore.InMemoryUserStore
}

func newEnv(t *testing.T) *env {
	t.Helper()

	users := userstore.NewInMemoryUserStore()
	tenants := tenantstore.NewInMemoryTenantStore()
	svc := service.NewService(users, tenants, password.New(bcrypt.MinCost))

	h := New(svc, logger.New())
	r := chi.NewRouter()
	h.Register(r)

	return &env{router: r, users: users}
}

func (e *env) addUser(t *testing.T, email string, superuser bool) *models.User {
	t.Helper()
	user, err := models.New(id.NewUserID(), email, "hash", time.Now())
	require.NoError(t, err)
	user.Superuser = superuser
	require.NoError(t, e.users.Create(context.Background(), user))
	return user
}

// do issues a request with the principal preloaded in the context, the way
// RequireAuth does in production.
func (e *env) do(t *testing.T, principal *models.User, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.WithPrincipal(req.Context(), principal))
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func TestCreateUser(t *testing.T) {
	e := newEnv(t)
	admin := e.addUser(t, "admin@example.com", true)

	rec := e.do(t, admin, http.MethodPost, "/users", map[string]any{
		"email":        "new@example.com",
		"password":     "longenough",
		"full_name":    "New User",
		"is_superuser": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	created := decodeBody[UserResponse](t, rec)
	assert.Equal(t, "new@example.com", created.Email)
	assert.True(t, created.Superuser)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestCreateUser_Forbidden(t *testing.T) {
	e := newEnv(t)
	user := e.addUser(t, "user@example.com", false)

	rec := e.do(t, user, http.MethodPost, "/users", map[string]any{
		"email":    "new@example.com",
		"password": "longenough",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListUsers(t *testing.T) {
	e := newEnv(t)
	admin := e.addUser(t, "admin@example.com", true)
	e.addUser(t, "user@example.com", false)

	rec := e.do(t, admin, http.MethodGet, "/users?offset=0&limit=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	list := decodeBody[UserListResponse](t, rec)
	assert.Equal(t, 2, list.Count)
	assert.Len(t, list.Users, 2)
}

func TestGetUser(t *testing.T) {
	e := newEnv(t)
	admin := e.addUser(t, "admin@example.com", true)
	user := e.addUser(t, "user@example.com", false)

	rec := e.do(t, admin, http.MethodGet, "/users/"+user.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[UserResponse](t, rec)
	assert.Equal(t, user.ID.String(), got.ID)

	// A regular user can read themselves but not others.
	rec = e.do(t, user, http.MethodGet, "/users/"+user.ID.String(), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, user, http.MethodGet, "/users/"+admin.ID.String(), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetUser_BadID(t *testing.T) {
	e := newEnv(t)
	admin := e.addUser(t, "admin@example.com", true)

	rec := e.do(t, admin, http.MethodGet, "/users/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetUser_NotFound(t *testing.T) {
	e := newEnv(t)
	admin := e.addUser(t, "admin@example.com", true)

	rec := e.do(t, admin, http.MethodGet, "/users/"+id.NewUserID().String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateUser(t *testing.T) {
	e := newEnv(t)
	admin := e.addUser(t, "admin@example.com", true)
	user := e.addUser(t, "user@example.com", false)

	rec := e.do(t, admin, http.MethodPut, "/users/"+user.ID.String(), map[string]any{
		"full_name": "Renamed",
		"is_active": false,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	updated := decodeBody[UserResponse](t, rec)
	assert.Equal(t, "Renamed", updated.FullName)
	assert.False(t, updated.Active)
}

func TestUpdateUser_SelfElevationForbidden(t *testing.T) {
	e := newEnv(t)
	user := e.addUser(t, "user@example.com", false)

	rec := e.do(t, user, http.MethodPut, "/users/"+user.ID.String(), map[string]any{
		"is_superuser": true,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDeleteUser(t *testing.T) {
	e := newEnv(t)
	admin := e.addUser(t, "admin@example.com", true)
	user := e.addUser(t, "user@example.com", false)

	rec := e.do(t, admin, http.MethodDelete, "/users/"+user.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = e.do(t, admin, http.MethodGet, "/users/"+user.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
