package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/zcorvus/zauth/internal/auth/domain"
	"github.com/zcorvus/zauth/internal/auth/store"
	"github.com/zcorvus/zauth/pkg/cryptox"
)

// ErrCannotDeleteSelf stops an admin from deleting their own account.
var ErrCannotDeleteSelf = errors.New("cannot delete own account")

// UserService covers profile reads and admin user management.
type UserService struct {
	Store store.Store
}

func (s *UserService) GetUser(ctx context.Context, id string) (domain.User, error) {
	return s.Store.Users().GetUserByID(ctx, id)
}

func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.Store.Users().ListUsers(ctx)
}

// UpdateProfile changes username/email. A clash with another account maps to
// ErrUserExists.
func (s *UserService) UpdateProfile(ctx context.Context, userID, username, email string) error {
	err := s.Store.Users().UpdateProfile(ctx, userID, username, email)
	if errors.Is(err, store.ErrAlreadyExists) {
		return ErrUserExists
	}
	return err
}

// ChangePassword re-verifies the current password before storing the new
// hash.
func (s *UserService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}

	if err := cryptox.VerifyPassword(u.PasswordHash, currentPassword); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.Store.Users().UpdatePasswordHash(ctx, userID, hash)
}

// UpdateUser is the admin edit: username, email and role.
func (s *UserService) UpdateUser(ctx context.Context, userID, username, email string, role domain.Role) error {
	if _, err := domain.ParseRole(role.String()); err != nil {
		return err
	}

	if err := s.UpdateProfile(ctx, userID, username, email); err != nil {
		return err
	}
	return s.Store.Users().UpdateRole(ctx, userID, role)
}

// DeleteUser removes an account. Refresh tokens and backup codes go with it
// via FK cascade. Admins cannot delete themselves.
func (s *UserService) DeleteUser(ctx context.Context, actorID, userID string) error {
	if actorID == userID {
		return ErrCannotDeleteSelf
	}
	return s.Store.Users().DeleteUser(ctx, userID)
}
