package store

import (
	"context"
	"errors"
	"time"

	"github.com/zcorvus/zauth/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable. We can change having the sub-repos as methods later but we do it
// now so we can have more control and actively stop people from accidently
// doing transactions within transactions.
type Store interface {
	Users() Users
	EntitlementTokens() EntitlementTokens
	RefreshTokens() RefreshTokens
	BackupCodes() BackupCodes

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// This is the recommended way to handle transactions as it automatically
	// handles commit/rollback logic.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources (optional for sqlite).
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used during login.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// GetUserByUsername is used for registration conflict checks.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	// A duplicate email or username maps to ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	// ListUsers returns all users ordered by creation date (newest first).
	ListUsers(ctx context.Context) ([]domain.User, error)

	// UpdateProfile mutates username/email and bumps updated_at.
	UpdateProfile(ctx context.Context, userID, username, email string) error

	// UpdatePasswordHash sets the password_hash (argon2) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error

	// UpdateRole persists a role transition (reconciler, admin edits).
	UpdateRole(ctx context.Context, userID string, role domain.Role) error

	// SetTokenID binds or clears the entitlement token reference.
	SetTokenID(ctx context.Context, userID string, tokenID *string) error

	// EnableTwoFactor persists the confirmed TOTP secret and flips the flag.
	EnableTwoFactor(ctx context.Context, userID, secret string) error

	// DisableTwoFactor clears the flag and the secret.
	DisableTwoFactor(ctx context.Context, userID string) error

	// GetEntitlement loads role, token reference and token finish date in a
	// single join for the reconciler.
	GetEntitlement(ctx context.Context, userID string) (domain.UserEntitlement, error)

	// DeleteUser cascades to refresh_tokens and backup_codes (per schema).
	DeleteUser(ctx context.Context, userID string) error
}

type EntitlementTokens interface {
	// GetTokenByID fetches an entitlement token by id.
	GetTokenByID(ctx context.Context, id string) (domain.EntitlementToken, error)

	// ListTokens returns all entitlement tokens ordered by finish date.
	ListTokens(ctx context.Context) ([]domain.EntitlementToken, error)

	// CreateToken inserts a provisioned token (ops tooling and tests).
	CreateToken(ctx context.Context, t domain.EntitlementToken) error
}

type RefreshTokens interface {
	// CreateRefreshToken stores a new refresh token record.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshTokenByHash returns the record by the fingerprint of the
	// presented token string.
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// UpdateLastUsed stamps a successful redemption.
	UpdateLastUsed(ctx context.Context, id string, t time.Time) error

	// DeleteRefreshToken removes a dead token (opportunistic purge on use).
	DeleteRefreshToken(ctx context.Context, id string) error

	// DeleteExpiredRefreshTokens removes tokens past absolute expiry or idle
	// longer than the inactivity window (housekeeping).
	DeleteExpiredRefreshTokens(ctx context.Context, now time.Time, inactivity time.Duration) error
}

type BackupCodes interface {
	// CreateBackupCode stores one code of a batch for a user.
	CreateBackupCode(ctx context.Context, c domain.BackupCode) error

	// ConsumeBackupCode atomically marks a matching unused code as used.
	// Returns false when no unused match exists (wrong code, already used,
	// or wrong owner).
	ConsumeBackupCode(ctx context.Context, userID, code string, usedAt time.Time) (bool, error)

	// ListUnusedBackupCodes returns the caller's unused codes for display.
	ListUnusedBackupCodes(ctx context.Context, userID string) ([]string, error)

	// CountUnusedBackupCodes returns the number of unused codes for a user.
	CountUnusedBackupCodes(ctx context.Context, userID string) (int, error)

	// DeleteAllBackupCodes removes every code for a user (regeneration).
	DeleteAllBackupCodes(ctx context.Context, userID string) error
}
