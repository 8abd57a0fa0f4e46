package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/zcorvus/zauth/internal/auth/domain"
	"github.com/zcorvus/zauth/internal/auth/service"
	"github.com/zcorvus/zauth/internal/auth/store"
	"github.com/zcorvus/zauth/pkg/authsdk"
	"github.com/zcorvus/zauth/pkg/httpx"
	"github.com/zcorvus/zauth/pkg/slogx"
	"github.com/zcorvus/zauth/pkg/timex"
)

// AuthHandler handles registration, login and session token endpoints.
type AuthHandler struct {
	AuthService    *service.AuthService
	SessionService *service.SessionService
	UserService    *service.UserService
}

// userInfo maps a domain user to its public representation.
func userInfo(u domain.User) *authsdk.UserInfo {
	return &authsdk.UserInfo{
		ID:               u.ID,
		Username:         u.Username,
		Email:            u.Email,
		Role:             u.Role.String(),
		TwoFactorEnabled: u.TwoFactorEnabled,
		CreatedAt:        u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// HandleRegister handles POST /auth/register
//
//	@Summary		Register a new account
//	@Description	Creates an account with the "user" role and returns an access token.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RegisterRequest	true	"Account details"
//	@Success		201		{object}	authsdk.AuthResponse	"Created account and access token"
//	@Failure		400		{object}	authsdk.ErrorResponse	"Malformed body or duplicate email/username"
//	@Failure		500		{object}	authsdk.ErrorResponse	"Internal server error"
//	@Router			/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "Username, email and password are required")
		return
	}

	user, token, err := h.AuthService.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			httpx.WriteError(w, http.StatusBadRequest, "Email or username already in use")
			return
		}
		log.Error("registration failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	log.Info("user registered", "user_id", user.ID)
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, authsdk.AuthResponse{
		Response: httpx.Response{Success: true, Message: "Account created"},
		Token:    token,
		User:     userInfo(user),
	})
}

// HandleLogin handles POST /auth/login
//
//	@Summary		Authenticate with email and password
//	@Description	Returns an access token. Accounts with 2FA enabled must supply twoFactorCode,
//	@Description	either a 6-digit TOTP code or an unused backup code. A missing code yields
//	@Description	401 with requires2FA set.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.AuthResponse	"Access token"
//	@Failure		400		{object}	authsdk.ErrorResponse	"Malformed body"
//	@Failure		401		{object}	authsdk.ErrorResponse	"Invalid credentials or missing/invalid 2FA code"
//	@Failure		500		{object}	authsdk.ErrorResponse	"Internal server error"
//	@Router			/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	user, token, err := h.AuthService.Login(ctx, req.Email, req.Password, req.TwoFactorCode)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTwoFactorRequired):
			httpx.NoCache(w)
			httpx.WriteJSON(w, http.StatusUnauthorized, authsdk.ErrorResponse{
				Response:    httpx.Response{Message: "Two-factor code required"},
				Requires2FA: true,
			})
		case errors.Is(err, service.ErrInvalidTwoFactorCode):
			httpx.WriteError(w, http.StatusUnauthorized, "Invalid two-factor code")
		case errors.Is(err, service.ErrInvalidCredentials):
			httpx.WriteError(w, http.StatusUnauthorized, "Invalid credentials")
		default:
			log.Error("login failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	log.Info("user logged in", "user_id", user.ID)
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.AuthResponse{
		Response: httpx.Response{Success: true, Message: "Login successful"},
		Token:    token,
		User:     userInfo(user),
	})
}

// HandleLogout handles POST /auth/logout
//
//	@Summary		End the session
//	@Description	Acknowledges the logout. Access tokens are short-lived and refresh tokens
//	@Description	die of inactivity; no server-side invalidation is performed.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	httpx.Response			"Logout acknowledged"
//	@Failure		401	{object}	authsdk.ErrorResponse	"Invalid or missing access token"
//	@Router			/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	httpx.NoCache(w)
	httpx.WriteSuccess(w, http.StatusOK, "Logged out")
}

// HandleProfileGet handles GET /auth/profile
//
//	@Summary		Get own profile
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.ProfileResponse	"Caller's account"
//	@Failure		401	{object}	authsdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		500	{object}	authsdk.ErrorResponse	"Internal server error"
//	@Router			/auth/profile [get].
func (h *AuthHandler) HandleProfileGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	userID := httpx.UserIDFromContext(ctx)

	user, err := h.UserService.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		log.Error("failed to load profile", "user_id", userID, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.ProfileResponse{
		Response: httpx.Response{Success: true},
		User:     userInfo(user),
	})
}

// HandleProfilePut handles PUT /auth/profile
//
//	@Summary		Update own profile
//	@Description	Changes the caller's username and email. Conflicts with another account
//	@Description	are rejected.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.UpdateProfileRequest	true	"New username and email"
//	@Success		200		{object}	authsdk.ProfileResponse			"Updated account"
//	@Failure		400		{object}	authsdk.ErrorResponse			"Malformed body or conflicting username/email"
//	@Failure		401		{object}	authsdk.ErrorResponse			"Invalid or missing access token"
//	@Failure		500		{object}	authsdk.ErrorResponse			"Internal server error"
//	@Router			/auth/profile [put].
func (h *AuthHandler) HandleProfilePut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	userID := httpx.UserIDFromContext(ctx)

	var req authsdk.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.Username == "" || req.Email == "" {
		httpx.WriteError(w, http.StatusBadRequest, "Username and email are required")
		return
	}

	if err := h.UserService.UpdateProfile(ctx, userID, req.Username, req.Email); err != nil {
		if errors.Is(err, service.ErrUserExists) {
			httpx.WriteError(w, http.StatusBadRequest, "Email or username already in use")
			return
		}
		log.Error("profile update failed", "user_id", userID, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	user, err := h.UserService.GetUser(ctx, userID)
	if err != nil {
		log.Error("failed to reload profile", "user_id", userID, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.ProfileResponse{
		Response: httpx.Response{Success: true, Message: "Profile updated"},
		User:     userInfo(user),
	})
}

// HandleRefreshToken handles POST /auth/refresh-token
//
//	@Summary		Issue a refresh token
//	@Description	Issues a long-lived refresh token for the caller, with an absolute expiry
//	@Description	and an inactivity window after which it dies even before that expiry.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.RefreshTokenResponse	"Refresh token and expiry"
//	@Failure		401	{object}	authsdk.ErrorResponse			"Invalid or missing access token"
//	@Failure		500	{object}	authsdk.ErrorResponse			"Internal server error"
//	@Router			/auth/refresh-token [post].
func (h *AuthHandler) HandleRefreshToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	userID := httpx.UserIDFromContext(ctx)

	token, expiresAt, err := h.SessionService.Issue(ctx, userID)
	if err != nil {
		log.Error("refresh token issue failed", "user_id", userID, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.RefreshTokenResponse{
		Response:         httpx.Response{Success: true},
		RefreshToken:     token,
		ExpiresAt:        expiresAt.UTC().Format(time.RFC3339),
		InactivityWindow: timex.FormatDuration(h.SessionService.InactivityTTL),
	})
}

// HandleRefresh handles POST /auth/refresh
//
//	@Summary		Redeem a refresh token
//	@Description	Exchanges a refresh token for a new access token. The refresh token is
//	@Description	never rotated and keeps working until it expires or goes idle too long.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RefreshRequest	true	"Refresh token"
//	@Success		200		{object}	authsdk.RefreshResponse	"New access token"
//	@Failure		400		{object}	authsdk.ErrorResponse	"Malformed body"
//	@Failure		403		{object}	authsdk.ErrorResponse	"Unknown, expired or inactive refresh token"
//	@Failure		500		{object}	authsdk.ErrorResponse	"Internal server error"
//	@Router			/auth/refresh [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.RefreshToken == "" {
		httpx.WriteError(w, http.StatusBadRequest, "Refresh token is required")
		return
	}

	access, err := h.SessionService.Redeem(ctx, req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRefreshNotFound),
			errors.Is(err, service.ErrRefreshInactive),
			errors.Is(err, service.ErrRefreshMalformed):
			httpx.WriteError(w, http.StatusForbidden, "Invalid or expired refresh token")
		default:
			log.Error("refresh redemption failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.RefreshResponse{
		Response: httpx.Response{Success: true},
		Token:    access,
	})
}
