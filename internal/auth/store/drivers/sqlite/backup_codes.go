package sqlite

import (
	"context"
	"time"

	"github.com/zcorvus/zauth/internal/auth/domain"
)

type backupCodesRepo struct {
	db dbtx
}

func (r *backupCodesRepo) CreateBackupCode(ctx context.Context, c domain.BackupCode) error {
	used := 0
	if c.Used {
		used = 1
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO backup_codes (id, user_id, code, used, used_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Code, used, mapOptionalTime(c.UsedAt), c.CreatedAt)
	return err
}

// ConsumeBackupCode is a compare-and-set on used=0 so two concurrent
// attempts can never both consume the same code.
func (r *backupCodesRepo) ConsumeBackupCode(ctx context.Context, userID, code string, usedAt time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE backup_codes SET used = 1, used_at = ?
		WHERE user_id = ? AND code = ? AND used = 0`,
		usedAt, userID, code)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *backupCodesRepo) ListUnusedBackupCodes(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT code FROM backup_codes
		WHERE user_id = ? AND used = 0
		ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

func (r *backupCodesRepo) CountUnusedBackupCodes(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM backup_codes WHERE user_id = ? AND used = 0`, userID).
		Scan(&n)
	return n, err
}

func (r *backupCodesRepo) DeleteAllBackupCodes(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM backup_codes WHERE user_id = ?`, userID)
	return err
}
