package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/zcorvus/zauth/internal/auth/domain"
	"github.com/zcorvus/zauth/internal/auth/store"
)

func TestEntitlementService_Reconcile(t *testing.T) {
	s := newTestStore(t)
	svc := &EntitlementService{Store: s}
	ctx := context.Background()

	t.Run("user with active token upgrades to pro", func(t *testing.T) {
		u := createTestUser(t, s, domain.RoleUser, "password123")
		tok := createTestToken(t, s, time.Now().UTC().Add(30*24*time.Hour))
		require.NoError(t, s.Users().SetTokenID(ctx, u.ID, &tok.ID))

		change, err := svc.Reconcile(ctx, u.ID)
		require.NoError(t, err)
		require.True(t, change.Changed)
		require.Equal(t, domain.RolePro, change.NewRole)
		require.Equal(t, ReasonTokenActive, change.Reason)

		got, err := s.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, domain.RolePro, got.Role)
	})

	t.Run("pro with expired token downgrades to user", func(t *testing.T) {
		u := createTestUser(t, s, domain.RolePro, "password123")
		tok := createTestToken(t, s, time.Now().UTC().Add(-time.Hour))
		require.NoError(t, s.Users().SetTokenID(ctx, u.ID, &tok.ID))

		change, err := svc.Reconcile(ctx, u.ID)
		require.NoError(t, err)
		require.True(t, change.Changed)
		require.Equal(t, domain.RoleUser, change.NewRole)
		require.Equal(t, ReasonTokenExpired, change.Reason)

		got, err := s.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, domain.RoleUser, got.Role)
	})

	t.Run("pro with no token downgrades to user", func(t *testing.T) {
		u := createTestUser(t, s, domain.RolePro, "password123")

		change, err := svc.Reconcile(ctx, u.ID)
		require.NoError(t, err)
		require.True(t, change.Changed)
		require.Equal(t, domain.RoleUser, change.NewRole)
	})

	t.Run("idempotent on repeat", func(t *testing.T) {
		u := createTestUser(t, s, domain.RoleUser, "password123")
		tok := createTestToken(t, s, time.Now().UTC().Add(24*time.Hour))
		require.NoError(t, s.Users().SetTokenID(ctx, u.ID, &tok.ID))

		first, err := svc.Reconcile(ctx, u.ID)
		require.NoError(t, err)
		require.True(t, first.Changed)

		second, err := svc.Reconcile(ctx, u.ID)
		require.NoError(t, err)
		require.False(t, second.Changed)
		require.Equal(t, domain.RolePro, second.NewRole)
	})

	t.Run("admin is never touched", func(t *testing.T) {
		u := createTestUser(t, s, domain.RoleAdmin, "password123")
		tok := createTestToken(t, s, time.Now().UTC().Add(24*time.Hour))
		require.NoError(t, s.Users().SetTokenID(ctx, u.ID, &tok.ID))

		change, err := svc.Reconcile(ctx, u.ID)
		require.NoError(t, err)
		require.False(t, change.Changed)
		require.Equal(t, domain.RoleAdmin, change.NewRole)

		got, err := s.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, domain.RoleAdmin, got.Role)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Reconcile(ctx, "missing")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestEntitlementService_MyToken(t *testing.T) {
	s := newTestStore(t)
	svc := &EntitlementService{Store: s}
	ctx := context.Background()

	u := createTestUser(t, s, domain.RoleUser, "password123")

	_, err := svc.MyToken(ctx, u.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	tok := createTestToken(t, s, time.Now().UTC().Add(24*time.Hour))
	require.NoError(t, s.Users().SetTokenID(ctx, u.ID, &tok.ID))

	got, err := svc.MyToken(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, tok.ID, got.ID)
	require.Equal(t, tok.Token, got.Token)
}

func TestEntitlementService_ListTokens(t *testing.T) {
	s := newTestStore(t)
	svc := &EntitlementService{Store: s}
	ctx := context.Background()

	createTestToken(t, s, time.Now().UTC().Add(24*time.Hour))
	createTestToken(t, s, time.Now().UTC().Add(-24*time.Hour))

	tokens, err := svc.ListTokens(ctx)
	require.NoError(t, err)
	require.Len(t, tokens, 2)
}
