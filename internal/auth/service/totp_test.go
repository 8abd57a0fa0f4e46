package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTOTPRoundTrip(t *testing.T) {
	key, err := GenerateTOTPSecret("zCorvus", "a@x.com")
	require.NoError(t, err)

	secret := key.Secret()
	require.NotEmpty(t, secret)

	code, err := CurrentTOTPCode(secret)
	require.NoError(t, err)
	require.Len(t, code, 6)

	require.True(t, VerifyTOTPCode(secret, code))
	require.False(t, VerifyTOTPCode(secret, "000000"))
	require.False(t, VerifyTOTPCode(secret, "not-a-code"))
}

func TestGenerateTOTPSecret_ProvisioningURI(t *testing.T) {
	key, err := GenerateTOTPSecret("zCorvus", "a@x.com")
	require.NoError(t, err)

	uri := key.URL()
	require.True(t, strings.HasPrefix(uri, "otpauth://totp/"))
	require.Contains(t, uri, "zCorvus")
	require.Contains(t, uri, key.Secret())
}

func TestQRCodeDataURI(t *testing.T) {
	key, err := GenerateTOTPSecret("zCorvus", "a@x.com")
	require.NoError(t, err)

	qr, err := QRCodeDataURI(key)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(qr, "data:image/png;base64,"))
}

func TestVerifyTOTPCode_DistinctSecrets(t *testing.T) {
	a, err := GenerateTOTPSecret("zCorvus", "a@x.com")
	require.NoError(t, err)
	b, err := GenerateTOTPSecret("zCorvus", "b@x.com")
	require.NoError(t, err)

	code, err := CurrentTOTPCode(a.Secret())
	require.NoError(t, err)

	require.True(t, VerifyTOTPCode(a.Secret(), code))
	require.False(t, VerifyTOTPCode(b.Secret(), code))
}
