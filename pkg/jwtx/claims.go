package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTLs. Short access tokens force frequent re-validation of the
// user's role; the refresh TTL is the absolute cap, inactivity is enforced by
// the session manager on top of it.
const (
	DefaultAccessTokenTTL  = 5 * time.Minute
	DefaultRefreshTokenTTL = 30 * 24 * time.Hour
)

// TokenTypeRefresh is the discriminant carried in refresh-token claims so an
// access token can never be redeemed as a refresh token or vice versa.
const TokenTypeRefresh = "refresh"

// Claims are the bearer-token claims used across the service. Access tokens
// carry identity (email, role); refresh tokens carry only the subject and the
// "refresh" type discriminant.
type Claims struct {
	jwt.RegisteredClaims

	// Email of the authenticated user (access tokens only)
	Email string `json:"email,omitempty"`

	// Role name ("admin", "user", "pro") at issue time (access tokens only).
	// Authorization decisions re-check the stored role; this is informational.
	Role string `json:"role,omitempty"`

	// TokenType discriminates refresh tokens from access tokens.
	TokenType string `json:"type,omitempty"`
}

// NewAccessClaims builds claims for a short-lived access token.
func NewAccessClaims(userID, email, role, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: email,
		Role:  role,
	}
}

// NewRefreshClaims builds claims for a long-lived refresh token.
func NewRefreshClaims(userID, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		TokenType: TokenTypeRefresh,
	}
}

// IsRefresh reports whether the claims carry the refresh discriminant.
func (c Claims) IsRefresh() bool { return c.TokenType == TokenTypeRefresh }
