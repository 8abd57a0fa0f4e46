package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/zcorvus/zauth/internal/auth/domain"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, username, email, password_hash, role_id, two_factor_enabled, two_factor_secret, token_id, created_at, updated_at`

func scanUser(row interface{ Scan(dest ...any) error }) (domain.User, error) {
	var (
		u         domain.User
		roleID    int
		twoFactor int
		secret    sql.NullString
		tokenID   sql.NullString
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &roleID,
		&twoFactor, &secret, &tokenID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return domain.User{}, err
	}

	role, err := roleFromID(roleID)
	if err != nil {
		return domain.User{}, err
	}

	u.Role = role
	u.TwoFactorEnabled = twoFactor != 0
	u.TwoFactorSecret = mapNullStringPtr(secret)
	u.TokenID = mapNullStringPtr(tokenID)
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	u, err := scanUser(row)
	return u, mapNotFound(err)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)

	u, err := scanUser(row)
	return u, mapNotFound(err)
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username)

	u, err := scanUser(row)
	return u, mapNotFound(err)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	roleID, err := roleToID(u.Role)
	if err != nil {
		return err
	}

	twoFactor := 0
	if u.TwoFactorEnabled {
		twoFactor = 1
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, role_id, two_factor_enabled, two_factor_secret, token_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.PasswordHash, roleID, twoFactor,
		mapOptionalString(u.TwoFactorSecret), mapOptionalString(u.TokenID),
		u.CreatedAt, u.UpdatedAt)
	return mapUnique(err)
}

func (r *usersRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *usersRepo) UpdateProfile(ctx context.Context, userID, username, email string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET username = ?, email = ?, updated_at = ? WHERE id = ?`,
		username, email, time.Now().UTC(), userID)
	if err != nil {
		return mapUnique(err)
	}
	return affectedOrNotFound(res)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID string, newHash string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		newHash, time.Now().UTC(), userID)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func (r *usersRepo) UpdateRole(ctx context.Context, userID string, role domain.Role) error {
	roleID, err := roleToID(role)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET role_id = ?, updated_at = ? WHERE id = ?`,
		roleID, time.Now().UTC(), userID)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func (r *usersRepo) SetTokenID(ctx context.Context, userID string, tokenID *string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET token_id = ?, updated_at = ? WHERE id = ?`,
		mapOptionalString(tokenID), time.Now().UTC(), userID)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func (r *usersRepo) EnableTwoFactor(ctx context.Context, userID, secret string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET two_factor_enabled = 1, two_factor_secret = ?, updated_at = ? WHERE id = ?`,
		secret, time.Now().UTC(), userID)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func (r *usersRepo) DisableTwoFactor(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET two_factor_enabled = 0, two_factor_secret = NULL, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), userID)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func (r *usersRepo) GetEntitlement(ctx context.Context, userID string) (domain.UserEntitlement, error) {
	var (
		roleID  int
		tokenID sql.NullString
		finish  sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT u.role_id, u.token_id, t.finish_date
		FROM users u
		LEFT JOIN entitlement_tokens t ON t.id = u.token_id
		WHERE u.id = ?`, userID).Scan(&roleID, &tokenID, &finish)
	if err != nil {
		return domain.UserEntitlement{}, mapNotFound(err)
	}

	role, err := roleFromID(roleID)
	if err != nil {
		return domain.UserEntitlement{}, err
	}

	return domain.UserEntitlement{
		Role:        role,
		TokenID:     mapNullStringPtr(tokenID),
		TokenFinish: mapNullTimePtr(finish),
	}, nil
}

func (r *usersRepo) DeleteUser(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func affectedOrNotFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return mapNotFound(sql.ErrNoRows)
	}
	return nil
}
