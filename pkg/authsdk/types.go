package authsdk

import (
	"github.com/zcorvus/zauth/pkg/httpx"
)

// ============================================================================
// Shared Types
// ============================================================================

// UserInfo is the public view of a user account. Password hashes and TOTP
// secrets never appear here.
type UserInfo struct {
	// ID is the unique identifier for the user (ULID)
	ID string `json:"id"`

	// Username is the user's login username
	Username string `json:"username"`

	// Email is the user's email address
	Email string `json:"email"`

	// Role is the user's current role ("admin", "user" or "pro")
	Role string `json:"role"`

	// TwoFactorEnabled indicates whether TOTP 2FA is active on the account
	TwoFactorEnabled bool `json:"twoFactorEnabled"`

	// CreatedAt is the account creation timestamp (RFC3339 format)
	CreatedAt string `json:"createdAt"`
}

// EntitlementTokenInfo describes an entitlement token and its validity window.
type EntitlementTokenInfo struct {
	ID         string `json:"id"`
	Token      string `json:"token"`
	Type       string `json:"type"`
	StartDate  string `json:"startDate"`
	FinishDate string `json:"finishDate"`
	CreatedAt  string `json:"createdAt"`
}

// ErrorResponse is the uniform failure envelope. Requires2FA and SetupURL
// are only populated on the distinguished two-factor responses (login
// without a code, Pro token access without 2FA).
type ErrorResponse struct {
	httpx.Response
	Requires2FA bool   `json:"requires2FA,omitempty"`
	SetupURL    string `json:"setupUrl,omitempty"`
}

// ============================================================================
// Auth Types
// ============================================================================

// RegisterRequest creates a new account. New accounts always start with the
// "user" role.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest authenticates with email and password. TwoFactorCode carries
// either a 6-digit TOTP code or an 8-character backup code and is required
// once 2FA is enabled on the account.
type LoginRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	TwoFactorCode string `json:"twoFactorCode,omitempty"`
}

// AuthResponse is returned from register and login with a fresh access token.
type AuthResponse struct {
	httpx.Response
	Token string    `json:"token,omitempty"`
	User  *UserInfo `json:"user,omitempty"`
}

// ProfileResponse wraps the caller's own profile.
type ProfileResponse struct {
	httpx.Response
	User *UserInfo `json:"user,omitempty"`
}

// UpdateProfileRequest changes the caller's username and email.
type UpdateProfileRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ChangePasswordRequest changes a password. The current password is always
// required, even for admins acting on another account.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ============================================================================
// Session Token Types
// ============================================================================

// RefreshTokenResponse is returned when a refresh token is issued.
type RefreshTokenResponse struct {
	httpx.Response

	// RefreshToken is the long-lived JWT to present at /auth/refresh
	RefreshToken string `json:"refreshToken,omitempty"`

	// ExpiresAt is the absolute expiry timestamp (RFC3339 format)
	ExpiresAt string `json:"expiresAt,omitempty"`

	// InactivityWindow is the idle window after which the token dies even
	// before its absolute expiry, as a duration string (e.g. "10d")
	InactivityWindow string `json:"inactivityWindow,omitempty"`
}

// RefreshRequest exchanges a refresh token for a new access token.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// RefreshResponse carries the new access token. The refresh token is never
// rotated, so it does not appear here.
type RefreshResponse struct {
	httpx.Response
	Token string `json:"token,omitempty"`
}

// ============================================================================
// Two-Factor Types
// ============================================================================

// TwoFactorSetupResponse stages a new TOTP secret. The secret is not
// committed to the account until verified.
type TwoFactorSetupResponse struct {
	httpx.Response

	// Secret is the base32-encoded TOTP secret for manual entry
	Secret string `json:"secret,omitempty" example:"JBSWY3DPEHPK3PXP"`

	// QRCode is a data URI containing a PNG QR code of the enrollment URI
	QRCode string `json:"qrCode,omitempty"`

	// URI is the otpauth:// enrollment URI
	URI string `json:"uri,omitempty" example:"otpauth://totp/zCorvus:user@example.com?secret=JBSWY3DPEHPK3PXP&issuer=zCorvus"`
}

// TwoFactorVerifyRequest submits a 6-digit TOTP code.
type TwoFactorVerifyRequest struct {
	Token string `json:"token"`
}

// TwoFactorVerifyResponse confirms 2FA. BackupCodes is only populated on
// the verification that first enables 2FA; it is the one time the batch is
// shown.
type TwoFactorVerifyResponse struct {
	httpx.Response
	BackupCodes []string `json:"backupCodes,omitempty"`
}

// TwoFactorDisableRequest turns 2FA off. Token is the current TOTP code and
// is required while 2FA is enabled.
type TwoFactorDisableRequest struct {
	Password string `json:"password"`
	Token    string `json:"token,omitempty"`
}

// BackupCodesResponse lists backup codes. For GET it is the caller's unused
// codes; for regeneration it is the freshly minted batch.
type BackupCodesResponse struct {
	httpx.Response
	Codes []string `json:"codes"`
}

// RegenerateBackupCodesRequest mints a replacement batch, invalidating every
// code from all prior batches.
type RegenerateBackupCodesRequest struct {
	Password string `json:"password"`
	Token    string `json:"token"`
}

// ============================================================================
// Entitlement Token Types
// ============================================================================

// TokenResponse wraps the caller's own entitlement token.
type TokenResponse struct {
	httpx.Response
	Token *EntitlementTokenInfo `json:"token,omitempty"`
}

// TokenListResponse lists all entitlement tokens (admin only).
type TokenListResponse struct {
	httpx.Response
	Tokens []EntitlementTokenInfo `json:"tokens"`
}

// ============================================================================
// User Administration Types
// ============================================================================

// UserResponse wraps a single user account.
type UserResponse struct {
	httpx.Response
	User *UserInfo `json:"user,omitempty"`
}

// UserListResponse lists all user accounts (admin only).
type UserListResponse struct {
	httpx.Response
	Users []UserInfo `json:"users"`
}

// UpdateUserRequest is the admin-side account update, including role changes.
type UpdateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results for critical dependencies (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
// Used in the /readyz endpoint to indicate the status of each component.
type HealthChecks struct {
	// Database indicates the database connection status
	Database string `json:"database"`

	// Cache indicates the two-factor staging cache status
	Cache string `json:"cache"`
}
