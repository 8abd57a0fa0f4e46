package authsdk

import (
	"context"
	"net/http"
)

// MyToken returns the entitlement token attached to the caller's account.
// Pro accounts must have 2FA enabled; otherwise the service answers 403
// with Requires2FA set on the returned *APIError.
func (s *Session) MyToken(ctx context.Context) (*EntitlementTokenInfo, error) {
	resp, err := s.doAuthJSON(ctx, http.MethodGet, "/tokens/me", nil)
	if err != nil {
		return nil, err
	}

	var tokenResp TokenResponse
	if err := decodeJSON(resp, &tokenResp, http.StatusOK); err != nil {
		return nil, err
	}
	return tokenResp.Token, nil
}

// ListTokens returns every entitlement token. Requires the admin role.
func (s *Session) ListTokens(ctx context.Context) ([]EntitlementTokenInfo, error) {
	resp, err := s.doAuthJSON(ctx, http.MethodGet, "/tokens", nil)
	if err != nil {
		return nil, err
	}

	var listResp TokenListResponse
	if err := decodeJSON(resp, &listResp, http.StatusOK); err != nil {
		return nil, err
	}
	return listResp.Tokens, nil
}
