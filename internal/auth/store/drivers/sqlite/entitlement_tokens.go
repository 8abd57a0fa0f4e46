package sqlite

import (
	"context"

	"github.com/zcorvus/zauth/internal/auth/domain"
)

type entitlementTokensRepo struct {
	db dbtx
}

const tokenColumns = `id, token, type, start_date, finish_date, created_at`

func scanToken(row interface{ Scan(dest ...any) error }) (domain.EntitlementToken, error) {
	var t domain.EntitlementToken
	err := row.Scan(&t.ID, &t.Token, &t.Type, &t.StartDate, &t.FinishDate, &t.CreatedAt)
	return t, err
}

func (r *entitlementTokensRepo) GetTokenByID(ctx context.Context, id string) (domain.EntitlementToken, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+tokenColumns+` FROM entitlement_tokens WHERE id = ?`, id)

	t, err := scanToken(row)
	return t, mapNotFound(err)
}

func (r *entitlementTokensRepo) ListTokens(ctx context.Context) ([]domain.EntitlementToken, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+tokenColumns+` FROM entitlement_tokens ORDER BY finish_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []domain.EntitlementToken
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

func (r *entitlementTokensRepo) CreateToken(ctx context.Context, t domain.EntitlementToken) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO entitlement_tokens (id, token, type, start_date, finish_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.Token, t.Type, t.StartDate, t.FinishDate, t.CreatedAt)
	return mapUnique(err)
}
