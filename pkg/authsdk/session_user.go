package authsdk

import (
	"context"
	"net/http"

	"github.com/zcorvus/zauth/pkg/httpx"
)

// Profile returns the caller's own account.
func (s *Session) Profile(ctx context.Context) (*UserInfo, error) {
	resp, err := s.doAuthJSON(ctx, http.MethodGet, "/auth/profile", nil)
	if err != nil {
		return nil, err
	}

	var profileResp ProfileResponse
	if err := decodeJSON(resp, &profileResp, http.StatusOK); err != nil {
		return nil, err
	}
	return profileResp.User, nil
}

// UpdateProfile changes the caller's username and email.
func (s *Session) UpdateProfile(ctx context.Context, username, email string) (*UserInfo, error) {
	resp, err := s.doAuthJSON(ctx, http.MethodPut, "/auth/profile", UpdateProfileRequest{
		Username: username,
		Email:    email,
	})
	if err != nil {
		return nil, err
	}

	var profileResp ProfileResponse
	if err := decodeJSON(resp, &profileResp, http.StatusOK); err != nil {
		return nil, err
	}
	return profileResp.User, nil
}

// ChangePassword changes the password of the given account. The account's
// current password is always required.
func (s *Session) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	resp, err := s.doAuthJSON(ctx, http.MethodPut, "/users/"+userID+"/password", ChangePasswordRequest{
		CurrentPassword: currentPassword,
		NewPassword:     newPassword,
	})
	if err != nil {
		return err
	}

	var envelope httpx.Response
	return decodeJSON(resp, &envelope, http.StatusOK)
}

// ListUsers returns every account. Requires the admin role.
func (s *Session) ListUsers(ctx context.Context) ([]UserInfo, error) {
	resp, err := s.doAuthJSON(ctx, http.MethodGet, "/users", nil)
	if err != nil {
		return nil, err
	}

	var listResp UserListResponse
	if err := decodeJSON(resp, &listResp, http.StatusOK); err != nil {
		return nil, err
	}
	return listResp.Users, nil
}

// GetUser returns a single account. Callers may fetch themselves; anything
// else requires the admin role.
func (s *Session) GetUser(ctx context.Context, userID string) (*UserInfo, error) {
	resp, err := s.doAuthJSON(ctx, http.MethodGet, "/users/"+userID, nil)
	if err != nil {
		return nil, err
	}

	var userResp UserResponse
	if err := decodeJSON(resp, &userResp, http.StatusOK); err != nil {
		return nil, err
	}
	return userResp.User, nil
}

// UpdateUser updates an account's username, email and role. Requires the
// admin role.
func (s *Session) UpdateUser(ctx context.Context, userID, username, email, role string) (*UserInfo, error) {
	resp, err := s.doAuthJSON(ctx, http.MethodPut, "/users/"+userID, UpdateUserRequest{
		Username: username,
		Email:    email,
		Role:     role,
	})
	if err != nil {
		return nil, err
	}

	var userResp UserResponse
	if err := decodeJSON(resp, &userResp, http.StatusOK); err != nil {
		return nil, err
	}
	return userResp.User, nil
}

// DeleteUser removes an account. Requires the admin role; admins cannot
// delete themselves.
func (s *Session) DeleteUser(ctx context.Context, userID string) error {
	resp, err := s.doAuthJSON(ctx, http.MethodDelete, "/users/"+userID, nil)
	if err != nil {
		return err
	}

	var envelope httpx.Response
	return decodeJSON(resp, &envelope, http.StatusOK)
}
