package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zcorvus/zauth/internal/auth/domain"
	"github.com/zcorvus/zauth/internal/auth/store"
	"github.com/zcorvus/zauth/pkg/cryptox"
	"github.com/zcorvus/zauth/pkg/idx"
	"github.com/zcorvus/zauth/pkg/jwtx"
)

var (
	ErrRefreshNotFound  = errors.New("refresh token not found")
	ErrRefreshInactive  = errors.New("refresh token expired or inactive")
	ErrRefreshMalformed = errors.New("malformed refresh token")
)

// SessionService issues and redeems long-lived refresh tokens with dual
// expiry: an absolute window and an inactivity window.
type SessionService struct {
	Store store.Store
	Codec *jwtx.Codec

	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	InactivityTTL time.Duration

	// Now overrides the clock in tests. Only the stored-row checks use it;
	// JWT exp validation stays on the real clock.
	Now func() time.Time
}

func (s *SessionService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Issue signs a fresh refresh token for userID and persists its fingerprint
// with last-used set to now.
func (s *SessionService) Issue(ctx context.Context, userID string) (string, time.Time, error) {
	now := s.now()

	signed, err := s.Codec.Sign(jwtx.NewRefreshClaims(userID, s.Codec.Issuer(), s.RefreshTTL, now))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	rec := domain.RefreshToken{
		ID:         idx.New().String(),
		UserID:     userID,
		TokenHash:  cryptox.FingerprintToken(signed),
		ExpiresAt:  now.Add(s.RefreshTTL),
		LastUsedAt: now,
		CreatedAt:  now,
	}
	if err := s.Store.RefreshTokens().CreateRefreshToken(ctx, rec); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to persist refresh token: %w", err)
	}

	return signed, rec.ExpiresAt, nil
}

// Redeem exchanges a refresh token for a new access token. The refresh token
// itself is never rotated. Failure order: ErrRefreshNotFound when no record
// matches, ErrRefreshInactive past either expiry window (the dead record is
// purged opportunistically), ErrRefreshMalformed on a bad signature or wrong
// token type, ErrRefreshNotFound again when the user is gone.
func (s *SessionService) Redeem(ctx context.Context, token string) (string, error) {
	now := s.now()

	rec, err := s.Store.RefreshTokens().GetRefreshTokenByHash(ctx, cryptox.FingerprintToken(token))
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrRefreshNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to load refresh token: %w", err)
	}

	if !now.Before(rec.ExpiresAt) || now.Sub(rec.LastUsedAt) >= s.InactivityTTL {
		_ = s.Store.RefreshTokens().DeleteRefreshToken(ctx, rec.ID)
		return "", ErrRefreshInactive
	}

	claims, err := s.Codec.Verify(token)
	if err != nil || !claims.IsRefresh() {
		return "", ErrRefreshMalformed
	}

	user, err := s.Store.Users().GetUserByID(ctx, rec.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrRefreshNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to load user: %w", err)
	}

	if err := s.Store.RefreshTokens().UpdateLastUsed(ctx, rec.ID, now); err != nil {
		return "", fmt.Errorf("failed to stamp refresh token: %w", err)
	}

	access := jwtx.NewAccessClaims(user.ID, user.Email, user.Role.String(), s.Codec.Issuer(), s.AccessTTL, now)
	signed, err := s.Codec.Sign(access)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}
