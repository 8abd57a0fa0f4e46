package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zcorvus/zauth/internal/auth/domain"
	"github.com/zcorvus/zauth/pkg/authsdk"
)

func TestUsersAdminEndpoints(t *testing.T) {
	r, s := newTestRouter(t)

	admin := createUser(t, s, domain.RoleAdmin, "admin@x.com", "password123")
	u := createUser(t, s, domain.RoleUser, "a@x.com", "password123")

	adminToken := login(t, r, "admin@x.com", "password123", "")
	userToken := login(t, r, "a@x.com", "password123", "")

	t.Run("list is admin only", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodGet, "/users", userToken, nil)
		require.Equal(t, http.StatusForbidden, rec.Code)

		rec = doJSON(t, r, http.MethodGet, "/users", adminToken, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp authsdk.UserListResponse
		decodeBody(t, rec, &resp)
		require.Len(t, resp.Users, 2)
		require.NotContains(t, rec.Body.String(), "passwordHash")
	})

	t.Run("get allows self and admin", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodGet, "/users/"+u.ID, userToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doJSON(t, r, http.MethodGet, "/users/"+u.ID, adminToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doJSON(t, r, http.MethodGet, "/users/"+admin.ID, userToken, nil)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("get unknown user", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodGet, "/users/missing", adminToken, nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("update changes role", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPut, "/users/"+u.ID, adminToken, map[string]string{
			"username": u.Username, "email": u.Email, "role": "pro",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp authsdk.UserResponse
		decodeBody(t, rec, &resp)
		require.Equal(t, "pro", resp.User.Role)
	})

	t.Run("update rejects unknown role", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPut, "/users/"+u.ID, adminToken, map[string]string{
			"username": u.Username, "email": u.Email, "role": "superuser",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("update is admin only", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPut, "/users/"+u.ID, userToken, map[string]string{
			"username": u.Username, "email": u.Email, "role": "user",
		})
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin cannot delete self", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodDelete, "/users/"+admin.ID, adminToken, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("admin deletes another account", func(t *testing.T) {
		victim := createUser(t, s, domain.RoleUser, "victim@x.com", "password123")

		rec := doJSON(t, r, http.MethodDelete, "/users/"+victim.ID, adminToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doJSON(t, r, http.MethodGet, "/users/"+victim.ID, adminToken, nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestChangePasswordEndpoint(t *testing.T) {
	r, s := newTestRouter(t)

	u := createUser(t, s, domain.RoleUser, "a@x.com", "password123")
	other := createUser(t, s, domain.RoleUser, "b@x.com", "password123")
	userToken := login(t, r, "a@x.com", "password123", "")

	t.Run("own password with wrong current is rejected", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPut, "/users/"+u.ID+"/password", userToken, map[string]string{
			"currentPassword": "wrong", "newPassword": "newpass456",
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("cannot change someone else's password", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPut, "/users/"+other.ID+"/password", userToken, map[string]string{
			"currentPassword": "password123", "newPassword": "newpass456",
		})
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("success rotates the credential", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPut, "/users/"+u.ID+"/password", userToken, map[string]string{
			"currentPassword": "password123", "newPassword": "newpass456",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		login(t, r, "a@x.com", "newpass456", "")

		rec = doJSON(t, r, http.MethodPost, "/auth/login", "", map[string]string{
			"email": "a@x.com", "password": "password123",
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestHealthEndpoints(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/livez", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var live authsdk.HealthResponse
	decodeBody(t, rec, &live)
	require.Equal(t, "ok", live.Status)

	rec = doJSON(t, r, http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var ready authsdk.HealthResponse
	decodeBody(t, rec, &ready)
	require.Equal(t, "ok", ready.Status)
	require.NotNil(t, ready.Checks)
	require.Equal(t, "ok", ready.Checks.Database)
	require.Equal(t, "ok", ready.Checks.Cache)
}
