package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewBackupCode(t *testing.T) {
	seen := make(map[string]struct{})

	for range 50 {
		code, err := NewBackupCode()
		require.NoError(t, err)
		require.Len(t, code, 8, "backup code should be 8 hex characters")

		for _, c := range code {
			valid := (c >= '0' && c <= '9') || (c >= 'A' && c <= 'F')
			require.True(t, valid, "backup code should be uppercase hex")
		}

		seen[code] = struct{}{}
	}

	// 50 draws from a 32-bit space should not collide
	require.Len(t, seen, 50, "backup codes should be unique")
}

func TestFingerprintToken(t *testing.T) {
	fp1 := FingerprintToken("some-token")
	fp2 := FingerprintToken("some-token")
	fp3 := FingerprintToken("other-token")

	require.Equal(t, fp1, fp2, "fingerprint should be deterministic")
	require.NotEqual(t, fp1, fp3)
	require.Len(t, fp1, 43, "base64url SHA-256 is 43 chars unpadded")
}
