package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/zcorvus/zauth/internal/auth/domain"
	"github.com/zcorvus/zauth/internal/auth/store"
	"github.com/zcorvus/zauth/pkg/idx"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTestUser(role domain.Role) domain.User {
	now := time.Now().UTC().Truncate(time.Second)
	id := idx.New().String()
	return domain.User{
		ID:           id,
		Username:     "user-" + id,
		Email:        id + "@example.com",
		PasswordHash: "$argon2id$fake",
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestUsersRepo_CreateAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser(domain.RoleUser)
	require.NoError(t, s.Users().CreateUser(ctx, u))

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Username, got.Username)
	require.Equal(t, domain.RoleUser, got.Role)
	require.False(t, got.TwoFactorEnabled)
	require.Nil(t, got.TwoFactorSecret)
	require.Nil(t, got.TokenID)

	byEmail, err := s.Users().GetUserByEmail(ctx, u.Email)
	require.NoError(t, err)
	require.Equal(t, u.ID, byEmail.ID)

	byName, err := s.Users().GetUserByUsername(ctx, u.Username)
	require.NoError(t, err)
	require.Equal(t, u.ID, byName.ID)

	_, err = s.Users().GetUserByID(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUsersRepo_DuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser(domain.RoleUser)
	require.NoError(t, s.Users().CreateUser(ctx, u))

	dup := newTestUser(domain.RoleUser)
	dup.Email = u.Email
	require.ErrorIs(t, s.Users().CreateUser(ctx, dup), store.ErrAlreadyExists)

	dup2 := newTestUser(domain.RoleUser)
	dup2.Username = u.Username
	require.ErrorIs(t, s.Users().CreateUser(ctx, dup2), store.ErrAlreadyExists)
}

func TestUsersRepo_RoleRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleUser, domain.RolePro} {
		u := newTestUser(role)
		require.NoError(t, s.Users().CreateUser(ctx, u))

		got, err := s.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, role, got.Role)
	}
}

func TestUsersRepo_TwoFactorLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser(domain.RoleUser)
	require.NoError(t, s.Users().CreateUser(ctx, u))

	require.NoError(t, s.Users().EnableTwoFactor(ctx, u.ID, "JBSWY3DPEHPK3PXP"))

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, got.TwoFactorEnabled)
	require.NotNil(t, got.TwoFactorSecret)
	require.Equal(t, "JBSWY3DPEHPK3PXP", *got.TwoFactorSecret)

	require.NoError(t, s.Users().DisableTwoFactor(ctx, u.ID))

	got, err = s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.False(t, got.TwoFactorEnabled)
	require.Nil(t, got.TwoFactorSecret)
}

func TestUsersRepo_Entitlement(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	u := newTestUser(domain.RoleUser)
	require.NoError(t, s.Users().CreateUser(ctx, u))

	t.Run("no token bound", func(t *testing.T) {
		ent, err := s.Users().GetEntitlement(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, domain.RoleUser, ent.Role)
		require.Nil(t, ent.TokenID)
		require.False(t, ent.HasActiveToken(now))
	})

	tok := domain.EntitlementToken{
		ID:         idx.New().String(),
		Token:      "PRO-" + idx.New().String(),
		Type:       "pro",
		StartDate:  now,
		FinishDate: now.Add(30 * 24 * time.Hour),
		CreatedAt:  now,
	}
	require.NoError(t, s.EntitlementTokens().CreateToken(ctx, tok))
	require.NoError(t, s.Users().SetTokenID(ctx, u.ID, &tok.ID))

	t.Run("active token bound", func(t *testing.T) {
		ent, err := s.Users().GetEntitlement(ctx, u.ID)
		require.NoError(t, err)
		require.NotNil(t, ent.TokenID)
		require.Equal(t, tok.ID, *ent.TokenID)
		require.NotNil(t, ent.TokenFinish)
		require.True(t, ent.HasActiveToken(now))
		require.False(t, ent.HasActiveToken(now.Add(31*24*time.Hour)))
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := s.Users().GetEntitlement(ctx, "missing")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestRefreshTokensRepo(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	u := newTestUser(domain.RoleUser)
	require.NoError(t, s.Users().CreateUser(ctx, u))

	rt := domain.RefreshToken{
		ID:         idx.New().String(),
		UserID:     u.ID,
		TokenHash:  "hash-1",
		ExpiresAt:  now.Add(30 * 24 * time.Hour),
		LastUsedAt: now,
		CreatedAt:  now,
	}
	require.NoError(t, s.RefreshTokens().CreateRefreshToken(ctx, rt))

	got, err := s.RefreshTokens().GetRefreshTokenByHash(ctx, "hash-1")
	require.NoError(t, err)
	require.Equal(t, rt.ID, got.ID)
	require.Equal(t, u.ID, got.UserID)

	_, err = s.RefreshTokens().GetRefreshTokenByHash(ctx, "nope")
	require.ErrorIs(t, err, store.ErrNotFound)

	later := now.Add(time.Hour)
	require.NoError(t, s.RefreshTokens().UpdateLastUsed(ctx, rt.ID, later))

	got, err = s.RefreshTokens().GetRefreshTokenByHash(ctx, "hash-1")
	require.NoError(t, err)
	require.WithinDuration(t, later, got.LastUsedAt, time.Second)

	require.NoError(t, s.RefreshTokens().DeleteRefreshToken(ctx, rt.ID))
	_, err = s.RefreshTokens().GetRefreshTokenByHash(ctx, "hash-1")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestRefreshTokensRepo_DeleteExpired(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)
	inactivity := 10 * 24 * time.Hour

	u := newTestUser(domain.RoleUser)
	require.NoError(t, s.Users().CreateUser(ctx, u))

	mk := func(hash string, expiresAt, lastUsed time.Time) {
		require.NoError(t, s.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
			ID:         idx.New().String(),
			UserID:     u.ID,
			TokenHash:  hash,
			ExpiresAt:  expiresAt,
			LastUsedAt: lastUsed,
			CreatedAt:  now,
		}))
	}

	mk("live", now.Add(time.Hour), now)
	mk("absolute-expired", now.Add(-time.Hour), now)
	mk("idle", now.Add(time.Hour), now.Add(-11*24*time.Hour))

	require.NoError(t, s.RefreshTokens().DeleteExpiredRefreshTokens(ctx, now, inactivity))

	_, err := s.RefreshTokens().GetRefreshTokenByHash(ctx, "live")
	require.NoError(t, err)
	_, err = s.RefreshTokens().GetRefreshTokenByHash(ctx, "absolute-expired")
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.RefreshTokens().GetRefreshTokenByHash(ctx, "idle")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestBackupCodesRepo(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	u := newTestUser(domain.RoleUser)
	require.NoError(t, s.Users().CreateUser(ctx, u))

	for _, code := range []string{"AABBCCDD", "11223344"} {
		require.NoError(t, s.BackupCodes().CreateBackupCode(ctx, domain.BackupCode{
			ID:        idx.New().String(),
			UserID:    u.ID,
			Code:      code,
			CreatedAt: now,
		}))
	}

	codes, err := s.BackupCodes().ListUnusedBackupCodes(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, codes, 2)

	n, err := s.BackupCodes().CountUnusedBackupCodes(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	t.Run("consume is single use", func(t *testing.T) {
		ok, err := s.BackupCodes().ConsumeBackupCode(ctx, u.ID, "AABBCCDD", now)
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = s.BackupCodes().ConsumeBackupCode(ctx, u.ID, "AABBCCDD", now)
		require.NoError(t, err)
		require.False(t, ok)

		n, err := s.BackupCodes().CountUnusedBackupCodes(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, 1, n)
	})

	t.Run("wrong owner cannot consume", func(t *testing.T) {
		other := newTestUser(domain.RoleUser)
		require.NoError(t, s.Users().CreateUser(ctx, other))

		ok, err := s.BackupCodes().ConsumeBackupCode(ctx, other.ID, "11223344", now)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("delete all", func(t *testing.T) {
		require.NoError(t, s.BackupCodes().DeleteAllBackupCodes(ctx, u.ID))

		n, err := s.BackupCodes().CountUnusedBackupCodes(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, 0, n)
	})
}

func TestWithTx_Rollback(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser(domain.RoleUser)
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, u); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.Users().GetUserByID(ctx, u.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestWithTx_Commit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser(domain.RoleUser)
	err := s.WithTx(ctx, func(tx store.Tx) error {
		return tx.Users().CreateUser(ctx, u)
	})
	require.NoError(t, err)

	_, err = s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
}

func TestUserDeleteCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	u := newTestUser(domain.RoleUser)
	require.NoError(t, s.Users().CreateUser(ctx, u))
	require.NoError(t, s.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
		ID:         idx.New().String(),
		UserID:     u.ID,
		TokenHash:  "cascade-hash",
		ExpiresAt:  now.Add(time.Hour),
		LastUsedAt: now,
		CreatedAt:  now,
	}))
	require.NoError(t, s.BackupCodes().CreateBackupCode(ctx, domain.BackupCode{
		ID:        idx.New().String(),
		UserID:    u.ID,
		Code:      "CAFEBABE",
		CreatedAt: now,
	}))

	require.NoError(t, s.Users().DeleteUser(ctx, u.ID))

	_, err := s.RefreshTokens().GetRefreshTokenByHash(ctx, "cascade-hash")
	require.ErrorIs(t, err, store.ErrNotFound)

	n, err := s.BackupCodes().CountUnusedBackupCodes(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, 0, n)
}
