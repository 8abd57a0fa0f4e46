package auth_test

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/zcorvus/zauth/internal/auth/domain"
	authhttp "github.com/zcorvus/zauth/internal/auth/http"
	"github.com/zcorvus/zauth/internal/auth/service"
	"github.com/zcorvus/zauth/internal/auth/store"
	"github.com/zcorvus/zauth/internal/auth/store/drivers/sqlite"
	"github.com/zcorvus/zauth/pkg/authsdk"
	"github.com/zcorvus/zauth/pkg/cachex"
	"github.com/zcorvus/zauth/pkg/cryptox"
	"github.com/zcorvus/zauth/pkg/httpx"
	"github.com/zcorvus/zauth/pkg/idx"
	"github.com/zcorvus/zauth/pkg/jwtx"
)

/*
 * End-to-end tests for the auth service. The full service stack runs
 * in-process behind an httptest server and every interaction goes through
 * the pkg/authsdk client, exactly as an external consumer would use it.
 */

const (
	adminEmail    = "admin@example.com"
	adminPassword = "Admin123!"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "zauth-e2e")
	if err != nil {
		os.Exit(1)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	// All SDK calls arrive from 127.0.0.1; production per-IP limits would
	// trip long before the assertions do.
	relaxed := httpx.RateLimitConfig{RequestsPerWindow: 10000, Window: time.Minute, Burst: 10000}
	httpx.StrictLimit = relaxed
	httpx.ModerateLimit = relaxed
	httpx.LenientLimit = relaxed

	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

// setupAuthServer starts the fully wired auth service on a loopback listener
// and returns an SDK client pointed at it plus the backing store for seeding.
func setupAuthServer(t *testing.T) (*authsdk.SDKClient, store.Store) {
	t.Helper()

	s, err := sqlite.NewStore(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())

	codec, err := jwtx.NewCodec([]byte("e2e-test-secret"), "zauth-e2e")
	require.NoError(t, err)

	cache := cachex.NewMemoryCache()
	backup := &service.BackupCodeService{Store: s}

	router := authhttp.NewRouter(codec, "e2e", s, cache,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	router.AuthService = &service.AuthService{
		Store:     s,
		Codec:     codec,
		AccessTTL: 5 * time.Minute,
		SecondFactors: []service.SecondFactorVerifier{
			service.TOTPVerifier{},
			service.BackupCodeVerifier{Codes: backup},
		},
	}
	router.SessionService = &service.SessionService{
		Store:         s,
		Codec:         codec,
		AccessTTL:     5 * time.Minute,
		RefreshTTL:    30 * 24 * time.Hour,
		InactivityTTL: 10 * 24 * time.Hour,
	}
	router.TwoFactorService = &service.TwoFactorService{
		Store:       s,
		Cache:       cache,
		BackupCodes: backup,
		Issuer:      "zCorvus",
	}
	router.BackupCodeService = backup
	router.EntitlementService = &service.EntitlementService{Store: s}
	router.UserService = &service.UserService{Store: s}
	router.ApplyRoutes()

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return authsdk.NewSDKClient(server.URL), s
}

// seedAdmin inserts an admin account directly through the store.
func seedAdmin(t *testing.T, s store.Store) domain.User {
	t.Helper()
	return seedUser(t, s, domain.RoleAdmin, adminEmail, adminPassword)
}

func seedUser(t *testing.T, s store.Store, role domain.Role, email, password string) domain.User {
	t.Helper()

	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Second)
	id := idx.New().String()
	u := domain.User{
		ID:           id,
		Username:     "user-" + id,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, s.Users().CreateUser(context.Background(), u))
	return u
}

// seedEntitlementToken inserts an entitlement token valid until finish.
func seedEntitlementToken(t *testing.T, s store.Store, finish time.Time) domain.EntitlementToken {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Second)
	tok := domain.EntitlementToken{
		ID:         idx.New().String(),
		Token:      "PRO-" + idx.New().String(),
		Type:       "pro",
		StartDate:  now.Add(-time.Hour),
		FinishDate: finish,
		CreatedAt:  now,
	}
	require.NoError(t, s.EntitlementTokens().CreateToken(context.Background(), tok))
	return tok
}

// enrollTwoFactor drives the full enrollment flow through the SDK and
// returns the TOTP secret and the freshly issued backup codes.
func enrollTwoFactor(t *testing.T, session *authsdk.Session) (string, []string) {
	t.Helper()
	ctx := context.Background()

	setup, err := session.SetupTwoFactor(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, setup.Secret)

	code, err := service.CurrentTOTPCode(setup.Secret)
	require.NoError(t, err)

	backupCodes, err := session.VerifyTwoFactor(ctx, code)
	require.NoError(t, err)
	require.Len(t, backupCodes, 10)

	return setup.Secret, backupCodes
}

// assertUnauthorized checks that err is an APIError with status 401.
func assertUnauthorized(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)

	apiErr, ok := err.(*authsdk.APIError)
	require.True(t, ok, "expected *authsdk.APIError, got: %v", err)
	require.Equal(t, 401, apiErr.StatusCode)
}

// assertForbidden checks that err is an APIError with status 403.
func assertForbidden(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)

	apiErr, ok := err.(*authsdk.APIError)
	require.True(t, ok, "expected *authsdk.APIError, got: %v", err)
	require.Equal(t, 403, apiErr.StatusCode)
}
