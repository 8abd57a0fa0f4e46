package authsdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the zCorvus authentication service.
// It provides access to unauthenticated operations and can create
// authenticated Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a new auth service client.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Register creates a new account and returns an authenticated session for
// it. New accounts always start with the "user" role.
func (c *SDKClient) Register(
	ctx context.Context,
	username, email, password string,
) (*Session, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/auth/register", RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, err
	}

	var authResp AuthResponse
	if err := decodeJSON(resp, &authResp, http.StatusCreated); err != nil {
		return nil, err
	}
	return newSession(c, authResp.Token), nil
}

// Login authenticates with email and password. twoFactorCode may be empty;
// when the account has 2FA enabled a missing code yields an *APIError with
// Requires2FA set.
func (c *SDKClient) Login(
	ctx context.Context,
	email, password, twoFactorCode string,
) (*Session, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/auth/login", LoginRequest{
		Email:         email,
		Password:      password,
		TwoFactorCode: twoFactorCode,
	})
	if err != nil {
		return nil, err
	}

	var authResp AuthResponse
	if err := decodeJSON(resp, &authResp, http.StatusOK); err != nil {
		return nil, err
	}
	return newSession(c, authResp.Token), nil
}

// Refresh exchanges a refresh token for a new access token. The refresh
// token itself is never rotated.
func (c *SDKClient) Refresh(ctx context.Context, refreshToken string) (string, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/auth/refresh", RefreshRequest{
		RefreshToken: refreshToken,
	})
	if err != nil {
		return "", err
	}

	var refreshResp RefreshResponse
	if err := decodeJSON(resp, &refreshResp, http.StatusOK); err != nil {
		return "", err
	}
	return refreshResp.Token, nil
}

// NewSessionFromTokens creates an authenticated session from previously
// stored tokens. refreshToken may be empty, in which case the session dies
// when the access token expires.
func (c *SDKClient) NewSessionFromTokens(accessToken, refreshToken string) *Session {
	s := newSession(c, accessToken)
	s.refreshToken = refreshToken
	return s
}
