package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/zcorvus/zauth/internal/auth/domain"
	"github.com/zcorvus/zauth/internal/auth/service"
	"github.com/zcorvus/zauth/internal/auth/store"
	"github.com/zcorvus/zauth/pkg/authsdk"
	"github.com/zcorvus/zauth/pkg/httpx"
	"github.com/zcorvus/zauth/pkg/slogx"
)

// UsersHandler handles user administration endpoints.
type UsersHandler struct {
	UserService *service.UserService
}

// canAccess reports whether the caller may act on the target account.
// Routes registered without RequireRole("admin") allow self-access.
func canAccess(r *http.Request, targetID string) bool {
	ctx := r.Context()
	return httpx.UserIDFromContext(ctx) == targetID || httpx.RoleFromContext(ctx) == "admin"
}

// HandleList handles GET /users
//
//	@Summary		List all accounts
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.UserListResponse	"All accounts"
//	@Failure		401	{object}	authsdk.ErrorResponse		"Invalid or missing access token"
//	@Failure		403	{object}	authsdk.ErrorResponse		"Caller is not an admin"
//	@Failure		500	{object}	authsdk.ErrorResponse		"Internal server error"
//	@Router			/users [get].
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	users, err := h.UserService.ListUsers(ctx)
	if err != nil {
		log.Error("failed to list users", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	infos := make([]authsdk.UserInfo, 0, len(users))
	for _, u := range users {
		infos = append(infos, *userInfo(u))
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.UserListResponse{
		Response: httpx.Response{Success: true},
		Users:    infos,
	})
}

// HandleGet handles GET /users/{id}
//
//	@Summary		Get an account
//	@Description	Callers may fetch their own account; anything else requires the admin role.
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string					true	"User ID"
//	@Success		200	{object}	authsdk.UserResponse	"Account"
//	@Failure		401	{object}	authsdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		403	{object}	authsdk.ErrorResponse	"Not the caller's account and caller is not an admin"
//	@Failure		404	{object}	authsdk.ErrorResponse	"No such account"
//	@Failure		500	{object}	authsdk.ErrorResponse	"Internal server error"
//	@Router			/users/{id} [get].
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	targetID := r.PathValue("id")

	if !canAccess(r, targetID) {
		httpx.WriteError(w, http.StatusForbidden, "Insufficient permissions")
		return
	}

	user, err := h.UserService.GetUser(ctx, targetID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "User not found")
			return
		}
		log.Error("failed to load user", "user_id", targetID, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.UserResponse{
		Response: httpx.Response{Success: true},
		User:     userInfo(user),
	})
}

// HandleUpdate handles PUT /users/{id}
//
//	@Summary		Update an account
//	@Description	Changes an account's username, email and role. Role must be one of
//	@Description	"admin", "user" or "pro".
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"User ID"
//	@Param			request	body		authsdk.UpdateUserRequest	true	"New account details"
//	@Success		200		{object}	authsdk.UserResponse		"Updated account"
//	@Failure		400		{object}	authsdk.ErrorResponse		"Malformed body, unknown role, or conflicting username/email"
//	@Failure		401		{object}	authsdk.ErrorResponse		"Invalid or missing access token"
//	@Failure		403		{object}	authsdk.ErrorResponse		"Caller is not an admin"
//	@Failure		404		{object}	authsdk.ErrorResponse		"No such account"
//	@Failure		500		{object}	authsdk.ErrorResponse		"Internal server error"
//	@Router			/users/{id} [put].
func (h *UsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	targetID := r.PathValue("id")

	var req authsdk.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.Username == "" || req.Email == "" || req.Role == "" {
		httpx.WriteError(w, http.StatusBadRequest, "Username, email and role are required")
		return
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Unknown role")
		return
	}

	if err := h.UserService.UpdateUser(ctx, targetID, req.Username, req.Email, role); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			httpx.WriteError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, service.ErrUserExists):
			httpx.WriteError(w, http.StatusBadRequest, "Email or username already in use")
		default:
			log.Error("user update failed", "user_id", targetID, "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	user, err := h.UserService.GetUser(ctx, targetID)
	if err != nil {
		log.Error("failed to reload user", "user_id", targetID, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	log.Info("user updated", "user_id", targetID, "role", user.Role.String())
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.UserResponse{
		Response: httpx.Response{Success: true, Message: "User updated"},
		User:     userInfo(user),
	})
}

// HandleDelete handles DELETE /users/{id}
//
//	@Summary		Delete an account
//	@Description	Removes an account and everything cascading from it (refresh tokens,
//	@Description	backup codes). Admins cannot delete themselves.
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string					true	"User ID"
//	@Success		200	{object}	httpx.Response			"Account deleted"
//	@Failure		400	{object}	authsdk.ErrorResponse	"Attempt to delete own account"
//	@Failure		401	{object}	authsdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		403	{object}	authsdk.ErrorResponse	"Caller is not an admin"
//	@Failure		404	{object}	authsdk.ErrorResponse	"No such account"
//	@Failure		500	{object}	authsdk.ErrorResponse	"Internal server error"
//	@Router			/users/{id} [delete].
func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	targetID := r.PathValue("id")
	actorID := httpx.UserIDFromContext(ctx)

	if err := h.UserService.DeleteUser(ctx, actorID, targetID); err != nil {
		switch {
		case errors.Is(err, service.ErrCannotDeleteSelf):
			httpx.WriteError(w, http.StatusBadRequest, "Cannot delete your own account")
		case errors.Is(err, store.ErrNotFound):
			httpx.WriteError(w, http.StatusNotFound, "User not found")
		default:
			log.Error("user deletion failed", "user_id", targetID, "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	log.Info("user deleted", "user_id", targetID, "actor_id", actorID)
	httpx.NoCache(w)
	httpx.WriteSuccess(w, http.StatusOK, "User deleted")
}

// HandleChangePassword handles PUT /users/{id}/password
//
//	@Summary		Change an account password
//	@Description	Callers may change their own password; admins may change anyone's.
//	@Description	The account's current password is always required.
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"User ID"
//	@Param			request	body		authsdk.ChangePasswordRequest	true	"Current and new password"
//	@Success		200		{object}	httpx.Response					"Password changed"
//	@Failure		400		{object}	authsdk.ErrorResponse			"Malformed body"
//	@Failure		401		{object}	authsdk.ErrorResponse			"Wrong current password or invalid access token"
//	@Failure		403		{object}	authsdk.ErrorResponse			"Not the caller's account and caller is not an admin"
//	@Failure		404		{object}	authsdk.ErrorResponse			"No such account"
//	@Failure		500		{object}	authsdk.ErrorResponse			"Internal server error"
//	@Router			/users/{id}/password [put].
func (h *UsersHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	targetID := r.PathValue("id")

	if !canAccess(r, targetID) {
		httpx.WriteError(w, http.StatusForbidden, "Insufficient permissions")
		return
	}

	var req authsdk.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		httpx.WriteError(w, http.StatusBadRequest, "Current and new password are required")
		return
	}

	if err := h.UserService.ChangePassword(ctx, targetID, req.CurrentPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			httpx.WriteError(w, http.StatusUnauthorized, "Invalid credentials")
		case errors.Is(err, store.ErrNotFound):
			httpx.WriteError(w, http.StatusNotFound, "User not found")
		default:
			log.Error("password change failed", "user_id", targetID, "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	log.Info("password changed", "user_id", targetID)
	httpx.NoCache(w)
	httpx.WriteSuccess(w, http.StatusOK, "Password changed")
}
