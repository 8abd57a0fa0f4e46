package authsdk

import (
	"context"
	"net/http"

	"github.com/zcorvus/zauth/pkg/httpx"
)

// SetupTwoFactor stages a TOTP secret for the caller. Nothing is committed
// to the account until the secret is verified.
func (s *Session) SetupTwoFactor(ctx context.Context) (*TwoFactorSetupResponse, error) {
	resp, err := s.doAuthJSON(ctx, http.MethodPost, "/auth/2fa/setup", nil)
	if err != nil {
		return nil, err
	}

	var setupResp TwoFactorSetupResponse
	if err := decodeJSON(resp, &setupResp, http.StatusOK); err != nil {
		return nil, err
	}
	return &setupResp, nil
}

// VerifyTwoFactor submits a 6-digit TOTP code. On the verification that
// first enables 2FA the returned slice holds the backup-code batch; this is
// the only time those codes are shown.
func (s *Session) VerifyTwoFactor(ctx context.Context, code string) ([]string, error) {
	resp, err := s.doAuthJSON(ctx, http.MethodPost, "/auth/2fa/verify", TwoFactorVerifyRequest{
		Token: code,
	})
	if err != nil {
		return nil, err
	}

	var verifyResp TwoFactorVerifyResponse
	if err := decodeJSON(resp, &verifyResp, http.StatusOK); err != nil {
		return nil, err
	}
	return verifyResp.BackupCodes, nil
}

// DisableTwoFactor turns 2FA off. code is the current TOTP code and is
// required while 2FA is enabled.
func (s *Session) DisableTwoFactor(ctx context.Context, password, code string) error {
	resp, err := s.doAuthJSON(ctx, http.MethodPost, "/auth/2fa/disable", TwoFactorDisableRequest{
		Password: password,
		Token:    code,
	})
	if err != nil {
		return err
	}

	var envelope httpx.Response
	return decodeJSON(resp, &envelope, http.StatusOK)
}

// BackupCodes lists the caller's unused backup codes.
func (s *Session) BackupCodes(ctx context.Context) ([]string, error) {
	resp, err := s.doAuthJSON(ctx, http.MethodGet, "/auth/2fa/backup-codes", nil)
	if err != nil {
		return nil, err
	}

	var codesResp BackupCodesResponse
	if err := decodeJSON(resp, &codesResp, http.StatusOK); err != nil {
		return nil, err
	}
	return codesResp.Codes, nil
}

// RegenerateBackupCodes mints a replacement batch, invalidating every code
// from all prior batches.
func (s *Session) RegenerateBackupCodes(ctx context.Context, password, code string) ([]string, error) {
	resp, err := s.doAuthJSON(ctx, http.MethodPost, "/auth/2fa/backup-codes/regenerate",
		RegenerateBackupCodesRequest{
			Password: password,
			Token:    code,
		})
	if err != nil {
		return nil, err
	}

	var codesResp BackupCodesResponse
	if err := decodeJSON(resp, &codesResp, http.StatusOK); err != nil {
		return nil, err
	}
	return codesResp.Codes, nil
}
