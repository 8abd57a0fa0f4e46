package jwtx

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := NewCodec([]byte("test-secret-with-enough-entropy"), "zauth-test")
	require.NoError(t, err)
	return c
}

func TestNewCodec_EmptySecret(t *testing.T) {
	_, err := NewCodec(nil, "zauth-test")
	require.Error(t, err)
}

func TestCodec_SignVerifyRoundTrip(t *testing.T) {
	c := newTestCodec(t)
	now := time.Now()

	t.Run("access token", func(t *testing.T) {
		claims := NewAccessClaims("user-1", "a@x.com", "user", c.Issuer(), 5*time.Minute, now)
		token, err := c.Sign(claims)
		require.NoError(t, err)

		got, err := c.Verify(token)
		require.NoError(t, err)
		require.Equal(t, "user-1", got.Subject)
		require.Equal(t, "a@x.com", got.Email)
		require.Equal(t, "user", got.Role)
		require.False(t, got.IsRefresh())
	})

	t.Run("refresh token", func(t *testing.T) {
		claims := NewRefreshClaims("user-1", c.Issuer(), 30*24*time.Hour, now)
		token, err := c.Sign(claims)
		require.NoError(t, err)

		got, err := c.Verify(token)
		require.NoError(t, err)
		require.Equal(t, "user-1", got.Subject)
		require.True(t, got.IsRefresh())
		require.Empty(t, got.Email)
	})
}

func TestCodec_VerifyFailuresAreUniform(t *testing.T) {
	c := newTestCodec(t)
	now := time.Now()

	valid, err := c.Sign(NewAccessClaims("user-1", "a@x.com", "user", c.Issuer(), time.Minute, now))
	require.NoError(t, err)

	other, err := NewCodec([]byte("a-different-secret-entirely"), "zauth-test")
	require.NoError(t, err)
	foreign, err := other.Sign(NewAccessClaims("user-1", "a@x.com", "user", "zauth-test", time.Minute, now))
	require.NoError(t, err)

	expired, err := c.Sign(NewAccessClaims("user-1", "a@x.com", "user", c.Issuer(), -time.Minute, now))
	require.NoError(t, err)

	// Flip a character inside the signature segment
	tampered := valid[:len(valid)-2] + "xx"

	wrongIssuer, err := c.Sign(NewAccessClaims("user-1", "a@x.com", "user", "someone-else", time.Minute, now))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-jwt"},
		{"empty", ""},
		{"missing segments", "aaaa.bbbb"},
		{"wrong secret", foreign},
		{"expired", expired},
		{"tampered signature", tampered},
		{"wrong issuer", wrongIssuer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Verify(tt.token)
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestCodec_DecodeUnchecked(t *testing.T) {
	c := newTestCodec(t)

	expired, err := c.Sign(NewRefreshClaims("user-9", c.Issuer(), -time.Hour, time.Now()))
	require.NoError(t, err)

	// Expired and even wrongly-signed tokens still decode
	claims, ok := c.DecodeUnchecked(expired)
	require.True(t, ok)
	require.Equal(t, "user-9", claims.Subject)
	require.True(t, claims.IsRefresh())

	_, ok = c.DecodeUnchecked(strings.Repeat("x", 20))
	require.False(t, ok)
}
