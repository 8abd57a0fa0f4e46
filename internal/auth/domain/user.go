package domain

import "time"

type User struct {
	ID               string
	Username         string
	Email            string
	PasswordHash     string // argon2 encoded
	Role             Role
	TwoFactorEnabled bool
	TwoFactorSecret  *string // TOTP secret (nullable, base32 encoded)
	TokenID          *string // entitlement token reference (nullable)
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
