package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

// BackupCodeBytes is the number of random bytes behind a backup code.
// Four bytes render as 8 hex characters and give 32 bits of entropy.
const BackupCodeBytes = 4

// NewBackupCode creates a single-use recovery code: 8 uppercase hex
// characters from a cryptographically secure source.
func NewBackupCode() (string, error) {
	buf := make([]byte, BackupCodeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate backup code: %w", err)
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}

// FingerprintToken returns a deterministic SHA-256 fingerprint of a token.
// This is used to store hashed tokens in databases, allowing lookup without
// storing the original token value.
//
// The fingerprint is returned as a base64url-encoded string (43 chars).
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
