package service

import (
	"context"
	"fmt"
	"time"

	"github.com/zcorvus/zauth/internal/auth/domain"
	"github.com/zcorvus/zauth/internal/auth/store"
)

// Reasons reported alongside a role transition.
const (
	ReasonTokenExpired = "Token expired or missing"
	ReasonTokenActive  = "Active token detected"
)

// EntitlementService keeps a user's role consistent with their entitlement
// token. It is the sole mechanism granting or revoking pro status.
type EntitlementService struct {
	Store store.Store
}

// Reconcile corrects role drift for one user. Admins are never touched; pro
// without an active token drops to user, user with an active token rises to
// pro. Idempotent and safe to run on every authenticated request; the change
// is persisted before returning.
func (s *EntitlementService) Reconcile(ctx context.Context, userID string) (domain.RoleChange, error) {
	ent, err := s.Store.Users().GetEntitlement(ctx, userID)
	if err != nil {
		return domain.RoleChange{}, fmt.Errorf("failed to load entitlement: %w", err)
	}

	active := ent.HasActiveToken(time.Now().UTC())

	switch {
	case ent.Role == domain.RolePro && !active:
		if err := s.Store.Users().UpdateRole(ctx, userID, domain.RoleUser); err != nil {
			return domain.RoleChange{}, fmt.Errorf("failed to downgrade role: %w", err)
		}
		return domain.RoleChange{Changed: true, NewRole: domain.RoleUser, Reason: ReasonTokenExpired}, nil

	case ent.Role == domain.RoleUser && active:
		if err := s.Store.Users().UpdateRole(ctx, userID, domain.RolePro); err != nil {
			return domain.RoleChange{}, fmt.Errorf("failed to upgrade role: %w", err)
		}
		return domain.RoleChange{Changed: true, NewRole: domain.RolePro, Reason: ReasonTokenActive}, nil

	default:
		return domain.RoleChange{Changed: false, NewRole: ent.Role}, nil
	}
}

// MyToken returns the entitlement token bound to the user, or
// store.ErrNotFound when none is bound.
func (s *EntitlementService) MyToken(ctx context.Context, userID string) (domain.EntitlementToken, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return domain.EntitlementToken{}, err
	}
	if u.TokenID == nil {
		return domain.EntitlementToken{}, store.ErrNotFound
	}
	return s.Store.EntitlementTokens().GetTokenByID(ctx, *u.TokenID)
}

// ListTokens returns every provisioned entitlement token (admin view).
func (s *EntitlementService) ListTokens(ctx context.Context) ([]domain.EntitlementToken, error) {
	return s.Store.EntitlementTokens().ListTokens(ctx)
}
