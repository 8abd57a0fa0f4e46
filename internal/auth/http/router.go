package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/zcorvus/zauth/internal/auth/service"
	"github.com/zcorvus/zauth/internal/auth/store"
	"github.com/zcorvus/zauth/pkg/cachex"
	"github.com/zcorvus/zauth/pkg/httpx"
	"github.com/zcorvus/zauth/pkg/jwtx"
	"github.com/zcorvus/zauth/pkg/slogx"

	_ "github.com/zcorvus/zauth/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	codec        *jwtx.Codec
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store
	cache cachex.Cache

	AuthService        *service.AuthService
	SessionService     *service.SessionService
	TwoFactorService   *service.TwoFactorService
	BackupCodeService  *service.BackupCodeService
	EntitlementService *service.EntitlementService
	UserService        *service.UserService
}

func NewRouter(
	codec *jwtx.Codec,
	buildVersion string,
	st store.Store,
	cache cachex.Cache,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		codec:        codec,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		cache:        cache,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerTwoFactor()
	r.registerTokens()
	r.registerUsers()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			zCorvus Authentication Service API
//	@version		0.1.0
//	@description	Account, session and two-factor management for zCorvus services.
//	@description
//	@description				Access tokens are short-lived HS256 JWTs. Long-lived refresh tokens can be
//	@description				issued on request and redeemed for new access tokens; they are never rotated.
//
//	@contact.name				zCorvus Team
//	@contact.url				https://github.com/zcorvus/zauth
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// authenticated builds the standard chain for bearer-protected routes:
// verify the JWT, then settle the caller's role against their entitlement
// token before any authorization decision.
func (r *Router) authenticated(h http.Handler, extra ...httpx.Middleware) http.Handler {
	mws := []httpx.Middleware{
		httpx.AuthnMiddleware(r.codec),
		r.reconcileRole(),
	}
	mws = append(mws, extra...)
	return httpx.Chain(h, mws...)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		AuthService:    r.AuthService,
		SessionService: r.SessionService,
		UserService:    r.UserService,
	}

	// POST /auth/register - strict rate limit by IP (public signup endpoint)
	r.Mux.Handle("POST /auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /auth/login - strict rate limit by IP + email form field equivalent
	// (JSON body, so IP-level only)
	r.Mux.Handle("POST /auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /auth/refresh - strict rate limit by IP (unauthenticated redemption)
	r.Mux.Handle("POST /auth/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /auth/logout",
		r.authenticated(http.HandlerFunc(h.HandleLogout),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("GET /auth/profile",
		r.authenticated(http.HandlerFunc(h.HandleProfileGet),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("PUT /auth/profile",
		r.authenticated(http.HandlerFunc(h.HandleProfilePut),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("POST /auth/refresh-token",
		r.authenticated(http.HandlerFunc(h.HandleRefreshToken),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerTwoFactor() {
	h := &TwoFactorHandler{
		TwoFactorService:  r.TwoFactorService,
		BackupCodeService: r.BackupCodeService,
	}

	r.Mux.Handle("POST /auth/2fa/setup",
		r.authenticated(http.HandlerFunc(h.HandleSetup),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// POST /auth/2fa/verify - strict rate limit by user (prevent brute force of TOTP codes)
	r.Mux.Handle("POST /auth/2fa/verify",
		r.authenticated(http.HandlerFunc(h.HandleVerify),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /auth/2fa/disable",
		r.authenticated(http.HandlerFunc(h.HandleDisable),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("GET /auth/2fa/backup-codes",
		r.authenticated(http.HandlerFunc(h.HandleListBackupCodes),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("POST /auth/2fa/backup-codes/regenerate",
		r.authenticated(http.HandlerFunc(h.HandleRegenerateBackupCodes),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerTokens() {
	h := &TokensHandler{
		EntitlementService: r.EntitlementService,
		UserService:        r.UserService,
	}

	r.Mux.Handle("GET /tokens/me",
		r.authenticated(http.HandlerFunc(h.HandleMyToken),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("GET /tokens",
		r.authenticated(http.HandlerFunc(h.HandleList),
			httpx.RequireRole("admin"),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService}

	r.Mux.Handle("GET /users",
		r.authenticated(http.HandlerFunc(h.HandleList),
			httpx.RequireRole("admin"),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// GET /users/{id} - self or admin, ownership checked in the handler
	r.Mux.Handle("GET /users/{id}",
		r.authenticated(http.HandlerFunc(h.HandleGet),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("PUT /users/{id}",
		r.authenticated(http.HandlerFunc(h.HandleUpdate),
			httpx.RequireRole("admin"),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("DELETE /users/{id}",
		r.authenticated(http.HandlerFunc(h.HandleDelete),
			httpx.RequireRole("admin"),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// PUT /users/{id}/password - self or admin, ownership checked in the handler
	r.Mux.Handle("PUT /users/{id}/password",
		r.authenticated(http.HandlerFunc(h.HandleChangePassword),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.cache),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
