package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/zcorvus/zauth/internal/auth/domain"
	"github.com/zcorvus/zauth/internal/auth/service"
	"github.com/zcorvus/zauth/internal/auth/store"
	"github.com/zcorvus/zauth/pkg/authsdk"
	"github.com/zcorvus/zauth/pkg/httpx"
	"github.com/zcorvus/zauth/pkg/slogx"
)

// TokensHandler handles entitlement token endpoints.
type TokensHandler struct {
	EntitlementService *service.EntitlementService
	UserService        *service.UserService
}

func tokenInfo(t domain.EntitlementToken) *authsdk.EntitlementTokenInfo {
	return &authsdk.EntitlementTokenInfo{
		ID:         t.ID,
		Token:      t.Token,
		Type:       t.Type,
		StartDate:  t.StartDate.UTC().Format(time.RFC3339),
		FinishDate: t.FinishDate.UTC().Format(time.RFC3339),
		CreatedAt:  t.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// HandleMyToken handles GET /tokens/me
//
//	@Summary		Get own entitlement token
//	@Description	Returns the entitlement token attached to the caller's account. Pro
//	@Description	accounts must have 2FA enabled; without it the request is refused with
//	@Description	requires2FA and a pointer at the enrollment endpoint.
//	@Tags			Tokens
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.TokenResponse	"Entitlement token"
//	@Failure		401	{object}	authsdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		403	{object}	authsdk.ErrorResponse	"Pro account without 2FA"
//	@Failure		404	{object}	authsdk.ErrorResponse	"No token attached to the account"
//	@Failure		500	{object}	authsdk.ErrorResponse	"Internal server error"
//	@Router			/tokens/me [get].
func (h *TokensHandler) HandleMyToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	userID := httpx.UserIDFromContext(ctx)

	user, err := h.UserService.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		log.Error("failed to load user", "user_id", userID, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	// Pro entitlements are gated behind 2FA.
	if user.Role == domain.RolePro && !user.TwoFactorEnabled {
		httpx.NoCache(w)
		httpx.WriteJSON(w, http.StatusForbidden, authsdk.ErrorResponse{
			Response:    httpx.Response{Message: "Two-factor authentication required for Pro accounts"},
			Requires2FA: true,
			SetupURL:    "/auth/2fa/setup",
		})
		return
	}

	token, err := h.EntitlementService.MyToken(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "No entitlement token on this account")
			return
		}
		log.Error("failed to load entitlement token", "user_id", userID, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.TokenResponse{
		Response: httpx.Response{Success: true},
		Token:    tokenInfo(token),
	})
}

// HandleList handles GET /tokens
//
//	@Summary		List all entitlement tokens
//	@Tags			Tokens
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.TokenListResponse	"All entitlement tokens"
//	@Failure		401	{object}	authsdk.ErrorResponse		"Invalid or missing access token"
//	@Failure		403	{object}	authsdk.ErrorResponse		"Caller is not an admin"
//	@Failure		500	{object}	authsdk.ErrorResponse		"Internal server error"
//	@Router			/tokens [get].
func (h *TokensHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	tokens, err := h.EntitlementService.ListTokens(ctx)
	if err != nil {
		log.Error("failed to list entitlement tokens", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	infos := make([]authsdk.EntitlementTokenInfo, 0, len(tokens))
	for _, t := range tokens {
		infos = append(infos, *tokenInfo(t))
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.TokenListResponse{
		Response: httpx.Response{Success: true},
		Tokens:   infos,
	})
}
