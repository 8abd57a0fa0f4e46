package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/zcorvus/zauth/internal/auth/http"
	"github.com/zcorvus/zauth/internal/auth/service"
	"github.com/zcorvus/zauth/internal/auth/store"
	"github.com/zcorvus/zauth/internal/auth/store/drivers/sqlite"
	"github.com/zcorvus/zauth/pkg/cachex"
	"github.com/zcorvus/zauth/pkg/cryptox"
	"github.com/zcorvus/zauth/pkg/jwtx"
	"github.com/zcorvus/zauth/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db    store.Store
	cache cachex.Cache
	codec *jwtx.Codec

	// Services
	authService         *service.AuthService
	sessionService      *service.SessionService
	twoFactorService    *service.TwoFactorService
	backupCodeService   *service.BackupCodeService
	entitlementService  *service.EntitlementService
	userService         *service.UserService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	codec, err := jwtx.NewCodec([]byte(cfg.JWTSecret), cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token codec: %w", err)
	}
	app.codec = codec

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initCache(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	// Start housekeeping service
	app.housekeepingService.Start()

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Stop the housekeeping service
	app.housekeepingService.Stop()

	if err := app.cache.Close(); err != nil {
		app.logger.Error("error closing cache", "error", err)
	}

	// Close database connection
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initCache initializes the two-factor staging cache
func (app *Application) initCache() error {
	switch app.cfg.CacheBackend {
	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		cache, err := cachex.NewRedisCache(ctx, app.cfg.RedisAddr, app.cfg.RedisPassword, app.cfg.RedisDB)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		app.cache = cache
		app.logger.Info("redis staging cache connected", "addr", app.cfg.RedisAddr)
	default:
		app.cache = cachex.NewMemoryCache()
		app.logger.Info("in-memory staging cache initialized")
	}
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.backupCodeService = &service.BackupCodeService{Store: app.db}

	app.authService = &service.AuthService{
		Store:     app.db,
		Codec:     app.codec,
		AccessTTL: app.cfg.AccessTokenTTL,
		SecondFactors: []service.SecondFactorVerifier{
			service.TOTPVerifier{},
			service.BackupCodeVerifier{Codes: app.backupCodeService},
		},
	}

	app.sessionService = &service.SessionService{
		Store:         app.db,
		Codec:         app.codec,
		AccessTTL:     app.cfg.AccessTokenTTL,
		RefreshTTL:    app.cfg.RefreshTokenTTL,
		InactivityTTL: app.cfg.RefreshInactivity,
	}

	app.twoFactorService = &service.TwoFactorService{
		Store:       app.db,
		Cache:       app.cache,
		BackupCodes: app.backupCodeService,
		Issuer:      "zCorvus",
		SetupTTL:    app.cfg.TwoFactorSetupTTL,
	}

	app.entitlementService = &service.EntitlementService{Store: app.db}
	app.userService = &service.UserService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingPeriod,
		app.cfg.RefreshInactivity,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.codec,
		BuildVersion,
		app.db,
		app.cache,
		app.logger,
	)

	// Wire services to router
	router.AuthService = app.authService
	router.SessionService = app.sessionService
	router.TwoFactorService = app.twoFactorService
	router.BackupCodeService = app.backupCodeService
	router.EntitlementService = app.entitlementService
	router.UserService = app.userService
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
