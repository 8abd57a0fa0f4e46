package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/zcorvus/zauth/pkg/authsdk"
)

func TestAdminUserManagement(t *testing.T) {
	client, s := setupAuthServer(t)
	ctx := t.Context()

	admin := seedAdmin(t, s)
	adminSession, err := client.Login(ctx, adminEmail, adminPassword, "")
	require.NoError(t, err)

	userSession, err := client.Register(ctx, "frank", "frank@example.com", "Password123!")
	require.NoError(t, err)
	frank, err := userSession.Profile(ctx)
	require.NoError(t, err)

	t.Run("listing users requires admin", func(t *testing.T) {
		_, err := userSession.ListUsers(ctx)
		assertForbidden(t, err)

		users, err := adminSession.ListUsers(ctx)
		require.NoError(t, err)
		require.Len(t, users, 2)
	})

	t.Run("admin updates another account's role", func(t *testing.T) {
		updated, err := adminSession.UpdateUser(ctx, frank.ID, frank.Username, frank.Email, "pro")
		require.NoError(t, err)
		require.Equal(t, "pro", updated.Role)

		// Without an entitlement token the very next authenticated request
		// reconciles the account back to plain user.
		profile, err := userSession.Profile(ctx)
		require.NoError(t, err)
		require.Equal(t, "user", profile.Role)
	})

	t.Run("admin cannot delete itself", func(t *testing.T) {
		err := adminSession.DeleteUser(ctx, admin.ID)
		require.Error(t, err)

		apiErr, ok := err.(*authsdk.APIError)
		require.True(t, ok)
		require.Equal(t, 400, apiErr.StatusCode)
	})

	t.Run("admin deletes another account", func(t *testing.T) {
		victim, err := client.Register(ctx, "victim", "victim@example.com", "Password123!")
		require.NoError(t, err)
		profile, err := victim.Profile(ctx)
		require.NoError(t, err)

		require.NoError(t, adminSession.DeleteUser(ctx, profile.ID))

		_, err = victim.Profile(ctx)
		assertUnauthorized(t, err)
	})
}

func TestEntitlementTokenFlow(t *testing.T) {
	client, s := setupAuthServer(t)
	ctx := t.Context()

	seedAdmin(t, s)
	adminSession, err := client.Login(ctx, adminEmail, adminPassword, "")
	require.NoError(t, err)

	session, err := client.Register(ctx, "grace", "grace@example.com", "Password123!")
	require.NoError(t, err)
	grace, err := session.Profile(ctx)
	require.NoError(t, err)

	t.Run("no token attached", func(t *testing.T) {
		_, err := session.MyToken(ctx)
		require.Error(t, err)

		apiErr, ok := err.(*authsdk.APIError)
		require.True(t, ok)
		require.Equal(t, 404, apiErr.StatusCode)
	})

	// Attach an active entitlement token. The next authenticated request
	// upgrades the account to pro.
	tok := seedEntitlementToken(t, s, time.Now().UTC().Add(30*24*time.Hour))
	require.NoError(t, s.Users().SetTokenID(context.Background(), grace.ID, &tok.ID))

	t.Run("pro account without 2FA is pointed at enrollment", func(t *testing.T) {
		profile, err := session.Profile(ctx)
		require.NoError(t, err)
		require.Equal(t, "pro", profile.Role)

		_, err = session.MyToken(ctx)
		require.True(t, authsdk.IsTwoFactorRequired(err))

		apiErr := err.(*authsdk.APIError)
		require.Equal(t, 403, apiErr.StatusCode)
		require.Equal(t, "/auth/2fa/setup", apiErr.SetupURL)
	})

	t.Run("pro account with 2FA sees its token", func(t *testing.T) {
		enrollTwoFactor(t, session)

		info, err := session.MyToken(ctx)
		require.NoError(t, err)
		require.Equal(t, tok.ID, info.ID)
		require.Equal(t, tok.Token, info.Token)
	})

	t.Run("token listing requires admin", func(t *testing.T) {
		_, err := session.ListTokens(ctx)
		assertForbidden(t, err)

		tokens, err := adminSession.ListTokens(ctx)
		require.NoError(t, err)
		require.Len(t, tokens, 1)
	})
}
