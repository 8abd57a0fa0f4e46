package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/zcorvus/zauth/internal/auth/domain"
	"github.com/zcorvus/zauth/internal/auth/store"
	"github.com/zcorvus/zauth/pkg/cryptox"
	"github.com/zcorvus/zauth/pkg/idx"
)

// backupCodeCount is the batch size generated per enable/regenerate event.
const backupCodeCount = 10

// BackupCodeService manages single-use recovery codes. Codes are stored in
// the clear so the owner can list their unused codes; the single-use
// guarantee comes from the store's compare-and-set consumption.
type BackupCodeService struct {
	Store store.Store
}

// Generate replaces the user's entire batch: all prior codes are deleted and
// backupCodeCount fresh ones inserted in one transaction, so a concurrent
// verification sees either the full old batch or the full new batch.
func (s *BackupCodeService) Generate(ctx context.Context, userID string) ([]string, error) {
	codes := make([]string, backupCodeCount)
	for i := range codes {
		code, err := cryptox.NewBackupCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate backup code: %w", err)
		}
		codes[i] = code
	}

	now := time.Now().UTC()
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.BackupCodes().DeleteAllBackupCodes(ctx, userID); err != nil {
			return fmt.Errorf("failed to delete old backup codes: %w", err)
		}

		for _, code := range codes {
			c := domain.BackupCode{
				ID:        idx.New().String(),
				UserID:    userID,
				Code:      code,
				CreatedAt: now,
			}
			if err := tx.BackupCodes().CreateBackupCode(ctx, c); err != nil {
				return fmt.Errorf("failed to store backup code: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return codes, nil
}

// VerifyAndConsume matches code case-insensitively against the user's unused
// codes and marks the match used. A miss is false, not an error.
func (s *BackupCodeService) VerifyAndConsume(ctx context.Context, userID, code string) (bool, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return false, nil
	}
	return s.Store.BackupCodes().ConsumeBackupCode(ctx, userID, code, time.Now().UTC())
}

// Remaining lists the user's unused codes. Only ever exposed to the
// authenticated owner.
func (s *BackupCodeService) Remaining(ctx context.Context, userID string) ([]string, error) {
	return s.Store.BackupCodes().ListUnusedBackupCodes(ctx, userID)
}

// CountUnused returns how many codes the user has left.
func (s *BackupCodeService) CountUnused(ctx context.Context, userID string) (int, error) {
	return s.Store.BackupCodes().CountUnusedBackupCodes(ctx, userID)
}
