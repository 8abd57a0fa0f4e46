package service

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	totpPeriod     = 30 // seconds per time step
	totpSkew       = 2  // accepted steps either side of now (~60s of clock drift)
	totpSecretSize = 32 // raw secret bytes before base32 encoding
)

// GenerateTOTPSecret creates a fresh TOTP key for enrolment. The secret is
// not persisted here; callers stage it until the user confirms a code.
func GenerateTOTPSecret(issuer, account string) (*otp.Key, error) {
	return totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
		Period:      totpPeriod,
		SecretSize:  totpSecretSize,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
}

// VerifyTOTPCode checks code against secret, accepting the current time step
// plus or minus totpSkew steps.
func VerifyTOTPCode(secret, code string) bool {
	ok, err := totp.ValidateCustom(code, secret, time.Now().UTC(), totp.ValidateOpts{
		Period:    totpPeriod,
		Skew:      totpSkew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}

// CurrentTOTPCode returns the code for the current time step. Test and
// debug use only.
func CurrentTOTPCode(secret string) (string, error) {
	return totp.GenerateCode(secret, time.Now().UTC())
}

// QRCodeDataURI renders the provisioning URI of key as an inline PNG data
// URI suitable for an <img> tag.
func QRCodeDataURI(key *otp.Key) (string, error) {
	img, err := key.Image(200, 200)
	if err != nil {
		return "", fmt.Errorf("failed to render QR code: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode QR code: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
