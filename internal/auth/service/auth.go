package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zcorvus/zauth/internal/auth/domain"
	"github.com/zcorvus/zauth/internal/auth/store"
	"github.com/zcorvus/zauth/pkg/cryptox"
	"github.com/zcorvus/zauth/pkg/idx"
	"github.com/zcorvus/zauth/pkg/jwtx"
)

var (
	// ErrInvalidCredentials covers unknown email and wrong password alike so
	// callers cannot probe which emails exist.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrTwoFactorRequired signals a correct password on a 2FA-enabled
	// account with no code submitted.
	ErrTwoFactorRequired = errors.New("two-factor code required")

	// ErrUserExists reports a duplicate email or username at registration.
	ErrUserExists = errors.New("email or username already registered")
)

// SecondFactorVerifier checks one kind of second factor for a user. The
// login flow tries its verifiers in order and short-circuits on the first
// success.
type SecondFactorVerifier interface {
	Verify(ctx context.Context, user domain.User, code string) (bool, error)
}

// TOTPVerifier validates a submitted code against the user's persisted TOTP
// secret.
type TOTPVerifier struct{}

func (TOTPVerifier) Verify(_ context.Context, user domain.User, code string) (bool, error) {
	if user.TwoFactorSecret == nil {
		return false, nil
	}
	return VerifyTOTPCode(*user.TwoFactorSecret, code), nil
}

// BackupCodeVerifier consumes a matching unused backup code. Consumption and
// verification are one atomic step.
type BackupCodeVerifier struct {
	Codes *BackupCodeService
}

func (v BackupCodeVerifier) Verify(ctx context.Context, user domain.User, code string) (bool, error) {
	return v.Codes.VerifyAndConsume(ctx, user.ID, code)
}

// AuthService handles registration and login.
type AuthService struct {
	Store     store.Store
	Codec     *jwtx.Codec
	AccessTTL time.Duration

	// SecondFactors are tried in order on login: TOTP first, backup codes
	// as fallback.
	SecondFactors []SecondFactorVerifier
}

// Register creates an account with the base user role regardless of any role
// hint in the request and returns a short-lived access token. No refresh
// token is issued automatically.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (domain.User, string, error) {
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	u := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, "", ErrUserExists
		}
		return domain.User{}, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.signAccess(u, now)
	if err != nil {
		return domain.User{}, "", err
	}
	return u, token, nil
}

// Login verifies email+password and, when 2FA is enabled, a second factor.
// Credential failures are uniform; a missing second factor is reported
// distinctly so clients can prompt for it.
func (s *AuthService) Login(ctx context.Context, email, password, twoFactorCode string) (domain.User, string, error) {
	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, "", ErrInvalidCredentials
	}
	if err != nil {
		return domain.User{}, "", fmt.Errorf("failed to load user: %w", err)
	}

	if err := cryptox.VerifyPassword(u.PasswordHash, password); err != nil {
		return domain.User{}, "", ErrInvalidCredentials
	}

	if u.TwoFactorEnabled {
		if twoFactorCode == "" {
			return domain.User{}, "", ErrTwoFactorRequired
		}

		passed := false
		for _, verifier := range s.SecondFactors {
			ok, err := verifier.Verify(ctx, u, twoFactorCode)
			if err != nil {
				return domain.User{}, "", fmt.Errorf("second factor check failed: %w", err)
			}
			if ok {
				passed = true
				break
			}
		}
		if !passed {
			return domain.User{}, "", ErrInvalidTwoFactorCode
		}
	}

	token, err := s.signAccess(u, time.Now().UTC())
	if err != nil {
		return domain.User{}, "", err
	}
	return u, token, nil
}

func (s *AuthService) signAccess(u domain.User, now time.Time) (string, error) {
	claims := jwtx.NewAccessClaims(u.ID, u.Email, u.Role.String(), s.Codec.Issuer(), s.AccessTTL, now)
	token, err := s.Codec.Sign(claims)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return token, nil
}
