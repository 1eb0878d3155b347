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

	httpapi "github.com/stagedoorhq/stagedoor/internal/review/http"
	"github.com/stagedoorhq/stagedoor/internal/review/mail"
	"github.com/stagedoorhq/stagedoor/internal/review/service"
	"github.com/stagedoorhq/stagedoor/internal/review/store"
	"github.com/stagedoorhq/stagedoor/internal/review/store/drivers/sqlite"
	"github.com/stagedoorhq/stagedoor/pkg/jwtx"
	"github.com/stagedoorhq/stagedoor/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application wires the review service together: store, signer, services,
// router, and lifecycle.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	signer *jwtx.HS256

	authService     *service.AuthService
	inviteService   *service.InviteService
	projectService  *service.ProjectService
	feedbackService *service.FeedbackService
	userService     *service.UserService
	statsService    *service.StatsService
	housekeeping    *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New builds an Application from config. It fails closed: a missing or weak
// token secret is a startup error, not a warning.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "stagedoor",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	signer, err := jwtx.NewHS256([]byte(cfg.TokenSecret), cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token signer: %w", err)
	}
	app.signer = signer

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeeping.Start()

	app.logger.Info("stagedoor starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
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

// Shutdown drains in-flight requests, stops housekeeping, and closes the
// database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down stagedoor...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeeping.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("stagedoor stopped")
	return nil
}

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

func (app *Application) initServices() {
	app.authService = &service.AuthService{
		Store:    app.db,
		Signer:   app.signer,
		Issuer:   app.cfg.Issuer,
		TokenTTL: app.cfg.TokenTTL,
	}

	app.inviteService = &service.InviteService{
		Store:      app.db,
		Mailer:     app.buildMailer(),
		AppBaseURL: app.cfg.AppBaseURL,
		InviteTTL:  app.cfg.InviteTTL,
	}

	app.projectService = &service.ProjectService{Store: app.db}
	app.feedbackService = &service.FeedbackService{Store: app.db}
	app.userService = &service.UserService{Store: app.db}
	app.statsService = &service.StatsService{
		Store:    app.db,
		Projects: app.projectService,
		Feedback: app.feedbackService,
	}

	app.housekeeping = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// buildMailer returns the SMTP mailer when configured, otherwise the
// log-only development mailer.
func (app *Application) buildMailer() mail.Mailer {
	cfg := mail.SMTPConfig{
		Host:     app.cfg.SMTPHost,
		Port:     app.cfg.SMTPPort,
		Username: app.cfg.SMTPUser,
		Password: app.cfg.SMTPPass,
		From:     app.cfg.SMTPFrom,
	}
	if !cfg.Enabled() {
		app.logger.Info("smtp not configured, invitation links will be logged")
		return &mail.LogMailer{Logger: app.logger}
	}

	mailer, err := mail.NewSMTP(cfg)
	if err != nil {
		app.logger.Error("smtp mailer unavailable, falling back to log mailer", "err", err)
		return &mail.LogMailer{Logger: app.logger}
	}

	app.logger.Info("smtp mailer configured", "host", cfg.Host)
	return mailer
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.signer, BuildVersion, app.db, app.logger)

	router.AuthService = app.authService
	router.InviteService = app.inviteService
	router.ProjectService = app.projectService
	router.FeedbackService = app.feedbackService
	router.UserService = app.userService
	router.StatsService = app.statsService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
