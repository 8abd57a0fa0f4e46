package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is the single failure Verify exposes. Callers must not be
// able to distinguish a bad signature from a malformed or expired token; the
// wrapped cause is for internal logging only.
var ErrInvalidToken = errors.New("jwtx: invalid token")

// Codec signs and verifies HMAC-SHA256 bearer tokens with a shared secret.
type Codec struct {
	secret []byte
	issuer string
}

// NewCodec creates a Codec. The secret must be non-empty; the issuer is
// stamped into signed claims and enforced on verification when non-empty.
func NewCodec(secret []byte, issuer string) (*Codec, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwtx: signing secret must not be empty")
	}
	return &Codec{secret: secret, issuer: issuer}, nil
}

// Issuer returns the configured issuer claim value.
func (c *Codec) Issuer() string { return c.issuer }

// Sign produces a compact HS256 JWT for the given claims.
func (c *Codec) Sign(claims Claims) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token. Signature, structure, issuer and
// expiry are all checked; every failure collapses into ErrInvalidToken with
// the cause wrapped for logs.
func (c *Codec) Verify(token string) (Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}

	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	}, opts...)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}

// DecodeUnchecked parses claims WITHOUT verifying the signature. Diagnostics
// only; never use the result for authorization decisions.
func (c *Codec) DecodeUnchecked(token string) (Claims, bool) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return Claims{}, false
	}
	return claims, true
}
