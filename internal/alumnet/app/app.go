package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/alumnet/internal/alumnet/http"
	"github.com/aussiebroadwan/alumnet/internal/alumnet/service"
	"github.com/aussiebroadwan/alumnet/internal/alumnet/store"
	"github.com/aussiebroadwan/alumnet/internal/alumnet/store/drivers/sqlite"
	"github.com/aussiebroadwan/alumnet/pkg/cryptox"
	"github.com/aussiebroadwan/alumnet/pkg/jwtx"
	"github.com/aussiebroadwan/alumnet/pkg/slogx"
)

// BuildVersion is overridden at build time with -ldflags "-X .../app.BuildVersion=...".
var BuildVersion = "v0.1.0"

// Application wires the onboarding service together.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db         store.Store
	keyManager *jwtx.KeyManager

	mailService         *service.MailService
	inviteService       *service.InviteService
	accountService      *service.AccountService
	importService       *service.ImportService
	institutionService  *service.InstitutionService
	authService         *service.AuthService
	mfaService          *service.MFAService
	bootstrapService    *service.BootstrapService
	profileService      *service.ProfileService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "alumnet",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	keyManager, err := InitAuthKeys(app.cfg, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize JWT keys: %w", err)
	}
	app.keyManager = keyManager

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Run starts the background workers and the HTTP server, and blocks until
// shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()
	app.mailService.Start()

	app.logger.Info("alumnet starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown drains in-flight requests, stops the workers and closes the database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down alumnet...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Mail goes last so jobs queued by the final requests still get a run.
	app.housekeepingService.Stop()
	app.mailService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("alumnet stopped")
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

// initServices initializes all business logic services
func (app *Application) initServices() error {
	var sender service.Sender
	if app.cfg.SMTP.Host != "" {
		smtpSender, err := service.NewSMTPSender(app.cfg.SMTP)
		if err != nil {
			return fmt.Errorf("failed to configure smtp: %w", err)
		}
		sender = smtpSender
		app.logger.Info("smtp delivery enabled", "host", app.cfg.SMTP.Host, "port", app.cfg.SMTP.Port)
	} else {
		sender = service.LogSender{Logger: app.logger}
		app.logger.Warn("SMTP_HOST not set, invitation mail will only be logged")
	}

	app.mailService = service.NewMailService(
		app.db,
		sender,
		app.logger,
		app.cfg.BaseURL,
		app.cfg.MailDispatchInterval,
		app.cfg.MailMaxAttempts,
	)
	app.inviteService = &service.InviteService{
		Store: app.db,
		Mail:  app.mailService,
		TTL:   app.cfg.InviteTTL,
	}
	app.accountService = &service.AccountService{
		Store:   app.db,
		Invites: app.inviteService,
	}
	app.importService = &service.ImportService{
		Store:   app.db,
		Invites: app.inviteService,
		Mail:    app.mailService,
	}
	app.institutionService = &service.InstitutionService{
		Store: app.db,
		Mail:  app.mailService,
	}
	app.authService = &service.AuthService{
		Store:      app.db,
		KeyManager: app.keyManager,
		Issuer:     app.cfg.Issuer,
		AccessTTL:  app.cfg.AccessTokenTTL,
	}
	app.mfaService = &service.MFAService{
		Store:  app.db,
		Issuer: app.cfg.Issuer,
	}
	app.bootstrapService = &service.BootstrapService{
		Store: app.db,
		Token: app.cfg.BootstrapToken,
	}
	app.profileService = &service.ProfileService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
	if app.cfg.MailRetention > 0 {
		app.housekeepingService.MailRetention = app.cfg.MailRetention
	}

	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keyManager.KeySet,
		app.keyManager.Verifier,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.AccountService = app.accountService
	router.InviteService = app.inviteService
	router.ImportService = app.importService
	router.InstitutionService = app.institutionService
	router.AuthService = app.authService
	router.MFAService = app.mfaService
	router.BootstrapService = app.bootstrapService
	router.ProfileService = app.profileService
	router.Workers = map[string]httpapi.Worker{
		"mail":         app.mailService,
		"housekeeping": app.housekeepingService,
	}
	router.MaxUploadBytes = app.cfg.MaxUploadBytes
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
