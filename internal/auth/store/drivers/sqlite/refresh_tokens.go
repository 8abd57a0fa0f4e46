package sqlite

import (
	"context"
	"time"

	"github.com/zcorvus/zauth/internal/auth/domain"
)

type refreshTokensRepo struct {
	db dbtx
}

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, last_used_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.TokenHash, t.ExpiresAt, t.LastUsedAt, t.CreatedAt)
	return mapUnique(err)
}

func (r *refreshTokensRepo) GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error) {
	var t domain.RefreshToken
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, token_hash, expires_at, last_used_at, created_at
		FROM refresh_tokens WHERE token_hash = ?`, hash).
		Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.LastUsedAt, &t.CreatedAt)
	return t, mapNotFound(err)
}

func (r *refreshTokensRepo) UpdateLastUsed(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET last_used_at = ? WHERE id = ?`, at, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func (r *refreshTokensRepo) DeleteRefreshToken(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE id = ?`, id)
	return err
}

func (r *refreshTokensRepo) DeleteExpiredRefreshTokens(ctx context.Context, now time.Time, inactivity time.Duration) error {
	idleCutoff := now.Add(-inactivity)
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE expires_at <= ? OR last_used_at <= ?`,
		now, idleCutoff)
	return err
}
