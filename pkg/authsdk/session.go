package authsdk

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/zcorvus/zauth/pkg/httpx"
	"github.com/zcorvus/zauth/pkg/jwtx"
)

// Session represents an authenticated session. When a refresh token has
// been attached (via ObtainRefreshToken or NewSessionFromTokens), Session
// methods transparently obtain a new access token once the current one
// expires.
type Session struct {
	client *SDKClient

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time
}

// newSession creates a session around a freshly issued access token.
func newSession(client *SDKClient, accessToken string) *Session {
	return &Session{
		client:      client,
		accessToken: accessToken,
		expiresAt:   tokenExpiry(accessToken),
	}
}

// tokenExpiry extracts the exp claim without verifying the signature, less
// a 30 second buffer so tokens are refreshed before they actually lapse.
// Returns the zero time when the token carries no readable expiry.
func tokenExpiry(token string) time.Time {
	var claims jwtx.Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time.Add(-30 * time.Second)
}

// getValidToken returns a usable access token, refreshing it first when it
// has expired and a refresh token is available. Tokens without a readable
// expiry are used as-is and the server's verdict stands.
func (s *Session) getValidToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	if s.expiresAt.IsZero() || time.Now().Before(s.expiresAt) {
		token := s.accessToken
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another goroutine may have refreshed while we waited for the lock.
	if s.expiresAt.IsZero() || time.Now().Before(s.expiresAt) {
		return s.accessToken, nil
	}

	if s.refreshToken == "" {
		return "", fmt.Errorf("access token expired and no refresh token available")
	}

	token, err := s.client.Refresh(ctx, s.refreshToken)
	if err != nil {
		return "", fmt.Errorf("failed to refresh access token: %w", err)
	}

	s.accessToken = token
	s.expiresAt = tokenExpiry(token)
	return s.accessToken, nil
}

// ObtainRefreshToken asks the service for a refresh token and attaches it
// to the session, enabling automatic access-token renewal.
func (s *Session) ObtainRefreshToken(ctx context.Context) (*RefreshTokenResponse, error) {
	resp, err := s.doAuthJSON(ctx, http.MethodPost, "/auth/refresh-token", nil)
	if err != nil {
		return nil, err
	}

	var tokenResp RefreshTokenResponse
	if err := decodeJSON(resp, &tokenResp, http.StatusOK); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.refreshToken = tokenResp.RefreshToken
	s.mu.Unlock()

	return &tokenResp, nil
}

// Logout tells the service the session is over. The service performs no
// token invalidation; the caller should discard the session afterwards.
func (s *Session) Logout(ctx context.Context) error {
	resp, err := s.doAuthJSON(ctx, http.MethodPost, "/auth/logout", nil)
	if err != nil {
		return err
	}

	var envelope httpx.Response
	return decodeJSON(resp, &envelope, http.StatusOK)
}

// AccessToken returns the current access token without checking expiration.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// RefreshToken returns the attached refresh token, or "" if none.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}
