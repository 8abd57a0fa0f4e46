package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/zcorvus/zauth/internal/auth/store"
	"github.com/zcorvus/zauth/pkg/cachex"
	"github.com/zcorvus/zauth/pkg/cryptox"
)

var (
	ErrTwoFactorAlreadyEnabled = errors.New("two-factor already enabled")
	ErrTwoFactorNotEnabled     = errors.New("two-factor not enabled")
	ErrSetupNotFound           = errors.New("no pending two-factor setup")
	ErrInvalidTwoFactorCode    = errors.New("invalid two-factor code")
	ErrInvalidCodeFormat       = errors.New("code must be 6 digits")
)

// DefaultSetupTTL is how long a staged secret survives between setup and
// verify.
const DefaultSetupTTL = 10 * time.Minute

var sixDigits = regexp.MustCompile(`^[0-9]{6}$`)

// TwoFactorService runs the TOTP enrolment lifecycle. Candidate secrets are
// staged in the cache keyed by user ID and only persisted once the user
// proves possession with a valid code.
type TwoFactorService struct {
	Store       store.Store
	Cache       cachex.Cache
	BackupCodes *BackupCodeService

	Issuer   string
	SetupTTL time.Duration
}

// TwoFactorSetup is returned by Setup for the user to load into an
// authenticator app.
type TwoFactorSetup struct {
	Secret string
	QRCode string // inline PNG data URI
	URI    string // otpauth:// provisioning URI for manual entry
}

func (s *TwoFactorService) setupTTL() time.Duration {
	if s.SetupTTL > 0 {
		return s.SetupTTL
	}
	return DefaultSetupTTL
}

func setupKey(userID string) string { return "2fa:setup:" + userID }

// Setup generates a candidate secret and stages it without touching the
// persisted user record. Rejected when 2FA is already on.
func (s *TwoFactorService) Setup(ctx context.Context, userID string) (TwoFactorSetup, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return TwoFactorSetup{}, fmt.Errorf("failed to load user: %w", err)
	}
	if u.TwoFactorEnabled {
		return TwoFactorSetup{}, ErrTwoFactorAlreadyEnabled
	}

	key, err := GenerateTOTPSecret(s.Issuer, u.Email)
	if err != nil {
		return TwoFactorSetup{}, fmt.Errorf("failed to generate TOTP key: %w", err)
	}

	qr, err := QRCodeDataURI(key)
	if err != nil {
		return TwoFactorSetup{}, err
	}

	if err := s.Cache.Set(ctx, setupKey(userID), key.Secret(), s.setupTTL()); err != nil {
		return TwoFactorSetup{}, fmt.Errorf("failed to stage secret: %w", err)
	}

	return TwoFactorSetup{
		Secret: key.Secret(),
		QRCode: qr,
		URI:    key.URL(),
	}, nil
}

// Verify checks a 6-digit code. On an account mid-setup it confirms the
// staged secret, enables 2FA, discards the staged copy and returns the
// freshly generated backup codes exactly once. On an already-enabled account
// it just validates against the persisted secret and returns no codes.
func (s *TwoFactorService) Verify(ctx context.Context, userID, code string) ([]string, error) {
	if !sixDigits.MatchString(code) {
		return nil, ErrInvalidCodeFormat
	}

	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if u.TwoFactorEnabled {
		if u.TwoFactorSecret == nil || !VerifyTOTPCode(*u.TwoFactorSecret, code) {
			return nil, ErrInvalidTwoFactorCode
		}
		return nil, nil
	}

	secret, ok, err := s.Cache.Get(ctx, setupKey(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to read staged secret: %w", err)
	}
	if !ok {
		return nil, ErrSetupNotFound
	}

	if !VerifyTOTPCode(secret, code) {
		return nil, ErrInvalidTwoFactorCode
	}

	if err := s.Store.Users().EnableTwoFactor(ctx, userID, secret); err != nil {
		return nil, fmt.Errorf("failed to enable two-factor: %w", err)
	}

	codes, err := s.BackupCodes.Generate(ctx, userID)
	if err != nil {
		return nil, err
	}

	_ = s.Cache.Delete(ctx, setupKey(userID))
	return codes, nil
}

// Disable turns 2FA off after re-verifying the password and, while 2FA is
// enabled, a current TOTP code. Backup codes are removed alongside since
// they are meaningless without 2FA.
func (s *TwoFactorService) Disable(ctx context.Context, userID, password, code string) error {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}

	if err := cryptox.VerifyPassword(u.PasswordHash, password); err != nil {
		return ErrInvalidCredentials
	}

	if u.TwoFactorEnabled {
		if u.TwoFactorSecret == nil || !VerifyTOTPCode(*u.TwoFactorSecret, code) {
			return ErrInvalidTwoFactorCode
		}
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.BackupCodes().DeleteAllBackupCodes(ctx, userID); err != nil {
			return fmt.Errorf("failed to delete backup codes: %w", err)
		}
		if err := tx.Users().DisableTwoFactor(ctx, userID); err != nil {
			return fmt.Errorf("failed to disable two-factor: %w", err)
		}
		return nil
	})
}

// RegenerateBackupCodes replaces the batch after password + TOTP
// re-verification. Fails when 2FA is off.
func (s *TwoFactorService) RegenerateBackupCodes(ctx context.Context, userID, password, code string) ([]string, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := cryptox.VerifyPassword(u.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !u.TwoFactorEnabled {
		return nil, ErrTwoFactorNotEnabled
	}
	if u.TwoFactorSecret == nil || !VerifyTOTPCode(*u.TwoFactorSecret, code) {
		return nil, ErrInvalidTwoFactorCode
	}

	return s.BackupCodes.Generate(ctx, userID)
}
