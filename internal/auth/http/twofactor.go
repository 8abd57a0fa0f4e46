package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/zcorvus/zauth/internal/auth/service"
	"github.com/zcorvus/zauth/pkg/authsdk"
	"github.com/zcorvus/zauth/pkg/httpx"
	"github.com/zcorvus/zauth/pkg/slogx"
)

// TwoFactorHandler handles all TOTP and backup-code endpoints.
type TwoFactorHandler struct {
	TwoFactorService  *service.TwoFactorService
	BackupCodeService *service.BackupCodeService
}

// HandleSetup handles POST /auth/2fa/setup
//
//	@Summary		Begin 2FA enrollment
//	@Description	Stages a TOTP secret for the caller and returns it with a QR code and
//	@Description	otpauth URI. The secret is discarded unless verified within the setup TTL.
//	@Tags			TwoFactor
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.TwoFactorSetupResponse	"Staged secret, QR code and URI"
//	@Failure		400	{object}	authsdk.ErrorResponse			"2FA already enabled"
//	@Failure		401	{object}	authsdk.ErrorResponse			"Invalid or missing access token"
//	@Failure		500	{object}	authsdk.ErrorResponse			"Internal server error"
//	@Router			/auth/2fa/setup [post].
func (h *TwoFactorHandler) HandleSetup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	userID := httpx.UserIDFromContext(ctx)

	setup, err := h.TwoFactorService.Setup(ctx, userID)
	if err != nil {
		if errors.Is(err, service.ErrTwoFactorAlreadyEnabled) {
			httpx.WriteError(w, http.StatusBadRequest, "Two-factor authentication is already enabled")
			return
		}
		log.Error("2FA setup failed", "user_id", userID, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.TwoFactorSetupResponse{
		Response: httpx.Response{Success: true},
		Secret:   setup.Secret,
		QRCode:   setup.QRCode,
		URI:      setup.URI,
	})
}

// HandleVerify handles POST /auth/2fa/verify
//
//	@Summary		Verify a TOTP code
//	@Description	Confirms a staged secret and enables 2FA, returning the one-time backup
//	@Description	code batch. Once enabled, verifies against the committed secret and
//	@Description	returns no codes.
//	@Tags			TwoFactor
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.TwoFactorVerifyRequest	true	"6-digit TOTP code"
//	@Success		200		{object}	authsdk.TwoFactorVerifyResponse	"Backup codes on first enable"
//	@Failure		400		{object}	authsdk.ErrorResponse			"Malformed or wrong code, or no pending setup"
//	@Failure		401		{object}	authsdk.ErrorResponse			"Invalid or missing access token"
//	@Failure		500		{object}	authsdk.ErrorResponse			"Internal server error"
//	@Router			/auth/2fa/verify [post].
func (h *TwoFactorHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	userID := httpx.UserIDFromContext(ctx)

	var req authsdk.TwoFactorVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	codes, err := h.TwoFactorService.Verify(ctx, userID, req.Token)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCodeFormat):
			httpx.WriteError(w, http.StatusBadRequest, "Code must be 6 digits")
		case errors.Is(err, service.ErrSetupNotFound):
			httpx.WriteError(w, http.StatusBadRequest, "No pending two-factor setup")
		case errors.Is(err, service.ErrInvalidTwoFactorCode):
			httpx.WriteError(w, http.StatusBadRequest, "Invalid two-factor code")
		default:
			log.Error("2FA verification failed", "user_id", userID, "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	message := "Two-factor code verified"
	if len(codes) > 0 {
		log.Info("2FA enabled", "user_id", userID)
		message = "Two-factor authentication enabled"
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.TwoFactorVerifyResponse{
		Response:    httpx.Response{Success: true, Message: message},
		BackupCodes: codes,
	})
}

// HandleDisable handles POST /auth/2fa/disable
//
//	@Summary		Disable 2FA
//	@Description	Turns 2FA off and deletes all backup codes. Requires the account password
//	@Description	and, while 2FA is enabled, a current TOTP code.
//	@Tags			TwoFactor
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.TwoFactorDisableRequest	true	"Password and TOTP code"
//	@Success		200		{object}	httpx.Response					"2FA disabled"
//	@Failure		400		{object}	authsdk.ErrorResponse			"Malformed body or wrong TOTP code"
//	@Failure		401		{object}	authsdk.ErrorResponse			"Invalid password or access token"
//	@Failure		500		{object}	authsdk.ErrorResponse			"Internal server error"
//	@Router			/auth/2fa/disable [post].
func (h *TwoFactorHandler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	userID := httpx.UserIDFromContext(ctx)

	var req authsdk.TwoFactorDisableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if err := h.TwoFactorService.Disable(ctx, userID, req.Password, req.Token); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			httpx.WriteError(w, http.StatusUnauthorized, "Invalid credentials")
		case errors.Is(err, service.ErrInvalidTwoFactorCode):
			httpx.WriteError(w, http.StatusBadRequest, "Invalid two-factor code")
		default:
			log.Error("2FA disable failed", "user_id", userID, "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	log.Info("2FA disabled", "user_id", userID)
	httpx.NoCache(w)
	httpx.WriteSuccess(w, http.StatusOK, "Two-factor authentication disabled")
}

// HandleListBackupCodes handles GET /auth/2fa/backup-codes
//
//	@Summary		List unused backup codes
//	@Description	Returns the caller's unused backup codes from the current batch.
//	@Tags			TwoFactor
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.BackupCodesResponse	"Unused codes"
//	@Failure		401	{object}	authsdk.ErrorResponse		"Invalid or missing access token"
//	@Failure		500	{object}	authsdk.ErrorResponse		"Internal server error"
//	@Router			/auth/2fa/backup-codes [get].
func (h *TwoFactorHandler) HandleListBackupCodes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	userID := httpx.UserIDFromContext(ctx)

	codes, err := h.BackupCodeService.Remaining(ctx, userID)
	if err != nil {
		log.Error("backup code listing failed", "user_id", userID, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.BackupCodesResponse{
		Response: httpx.Response{Success: true},
		Codes:    codes,
	})
}

// HandleRegenerateBackupCodes handles POST /auth/2fa/backup-codes/regenerate
//
//	@Summary		Regenerate backup codes
//	@Description	Replaces the backup-code batch, invalidating every code from all prior
//	@Description	batches. Requires the account password and a current TOTP code.
//	@Tags			TwoFactor
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RegenerateBackupCodesRequest	true	"Password and TOTP code"
//	@Success		200		{object}	authsdk.BackupCodesResponse				"New backup codes (shown once)"
//	@Failure		400		{object}	authsdk.ErrorResponse					"Malformed body, 2FA not enabled, or wrong TOTP code"
//	@Failure		401		{object}	authsdk.ErrorResponse					"Invalid password or access token"
//	@Failure		500		{object}	authsdk.ErrorResponse					"Internal server error"
//	@Router			/auth/2fa/backup-codes/regenerate [post].
func (h *TwoFactorHandler) HandleRegenerateBackupCodes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	userID := httpx.UserIDFromContext(ctx)

	var req authsdk.RegenerateBackupCodesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	codes, err := h.TwoFactorService.RegenerateBackupCodes(ctx, userID, req.Password, req.Token)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			httpx.WriteError(w, http.StatusUnauthorized, "Invalid credentials")
		case errors.Is(err, service.ErrTwoFactorNotEnabled):
			httpx.WriteError(w, http.StatusBadRequest, "Two-factor authentication is not enabled")
		case errors.Is(err, service.ErrInvalidTwoFactorCode):
			httpx.WriteError(w, http.StatusBadRequest, "Invalid two-factor code")
		default:
			log.Error("backup code regeneration failed", "user_id", userID, "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	log.Info("backup codes regenerated", "user_id", userID)
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.BackupCodesResponse{
		Response: httpx.Response{Success: true, Message: "Backup codes regenerated"},
		Codes:    codes,
	})
}
