package domain

import "time"

// EntitlementToken is a time-bounded grant that justifies a user's pro role.
// Tokens expire naturally and are never auto-deleted by this service.
type EntitlementToken struct {
	ID         string
	Token      string
	Type       string // e.g. "pro"
	StartDate  time.Time
	FinishDate time.Time
	CreatedAt  time.Time
}

// ActiveAt reports whether the token still grants its entitlement at t.
func (e EntitlementToken) ActiveAt(t time.Time) bool {
	return t.Before(e.FinishDate)
}

// UserEntitlement is the reconciler's read model: the user's current role,
// the bound token (if any) and that token's finish date, loaded in one join.
type UserEntitlement struct {
	Role        Role
	TokenID     *string
	TokenFinish *time.Time
}

// HasActiveToken reports whether the user holds a token still active at now.
func (e UserEntitlement) HasActiveToken(now time.Time) bool {
	return e.TokenID != nil && e.TokenFinish != nil && now.Before(*e.TokenFinish)
}

// RefreshToken is the persisted half of a long-lived refresh credential.
// The signed JWT itself is fingerprinted before storage.
type RefreshToken struct {
	ID         string
	UserID     string
	TokenHash  string
	ExpiresAt  time.Time
	LastUsedAt time.Time
	CreatedAt  time.Time
}

// BackupCode is a single-use recovery credential substituting for a TOTP
// code. Codes are 8 uppercase hex characters.
type BackupCode struct {
	ID        string
	UserID    string
	Code      string
	Used      bool
	UsedAt    *time.Time
	CreatedAt time.Time
}
