// Package server wires the account service together and runs it: database
// and migrations, code store, mail, object storage, token issuer and the
// HTTP API, with graceful shutdown on SIGINT/SIGTERM.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/foodduck/internal/cryptox"
	"github.com/dmitrijs2005/foodduck/internal/logging"
	"github.com/dmitrijs2005/foodduck/internal/server/auth"
	"github.com/dmitrijs2005/foodduck/internal/server/codestore"
	"github.com/dmitrijs2005/foodduck/internal/server/config"
	"github.com/dmitrijs2005/foodduck/internal/server/httpapi"
	"github.com/dmitrijs2005/foodduck/internal/server/mailer"
	"github.com/dmitrijs2005/foodduck/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/foodduck/internal/server/services"
	"github.com/dmitrijs2005/foodduck/internal/server/storage"
	"github.com/dmitrijs2005/foodduck/internal/server/validator"
)

// seams for tests
var (
	openDB = repomanager.OpenDB

	newRepositoryManager = repomanager.NewPostgresRepositoryManager

	newRedisStore = func(ctx context.Context, o codestore.Options) (codestore.Store, io.Closer, error) {
		client, err := codestore.NewRedisClient(ctx, o)
		if err != nil {
			return nil, nil, err
		}
		return codestore.NewRedisStore(client), client, nil
	}
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	closers []io.Closer
	server  *httpapi.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	return newApp(ctx, c, logging.NewJSONLogger(os.Stdout, c.LogLevel))
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	app := &App{config: c, logger: logger}

	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	app.db = db
	app.closers = append(app.closers, db)

	rm := newRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		app.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	codes, err := app.codeStore(ctx)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("code store init error: %w", err)
	}

	issuer := auth.NewIssuer(db, rm, codes, auth.IssuerConfig{
		SecretKey:                    c.SecretKey,
		AccessTokenValidityDuration:  c.AccessTokenValidityDuration,
		RefreshTokenValidityDuration: c.RefreshTokenValidityDuration,
	}, nil)

	accounts := services.NewAccountService(db, rm, services.Deps{
		Issuer:    issuer,
		Codes:     codes,
		Mailer:    app.mailSender(ctx),
		Uploader:  storage.NewS3Uploader(app.s3Config()),
		Hasher:    cryptox.NewBcryptHasher(0),
		Validator: validator.New(validator.DefaultPolicy),
		Log:       logger,
	}, services.Options{
		CodeTTL:    c.AuthCodeTTL,
		ProfileDir: c.ProfileDir,
	})

	app.server = httpapi.NewServer(c.HTTPAddr, logger, accounts, issuer)
	return app, nil
}

func (app *App) codeStore(ctx context.Context) (codestore.Store, error) {
	if app.config.RedisAddr == "" {
		app.logger.Warn(ctx, "no redis address configured, keeping codes in memory")
		return codestore.NewMemoryStore(nil), nil
	}
	store, closer, err := newRedisStore(ctx, codestore.Options{
		Addr:     app.config.RedisAddr,
		Password: app.config.RedisPassword,
		DB:       app.config.RedisDB,
	})
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, closer)
	return store, nil
}

func (app *App) mailSender(ctx context.Context) mailer.Sender {
	if app.config.SMTPHost == "" {
		app.logger.Warn(ctx, "no smtp host configured, mail will only be logged")
		return mailer.NewLogSender(app.logger)
	}
	return mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:     app.config.SMTPHost,
		Port:     app.config.SMTPPort,
		Username: app.config.SMTPUsername,
		Password: app.config.SMTPPassword,
		From:     app.config.MailFrom,
	})
}

func (app *App) s3Config() storage.S3Config {
	return storage.S3Config{
		Region:       app.config.S3Region,
		AccessKey:    app.config.S3RootUser,
		SecretKey:    app.config.S3RootPassword,
		BaseEndpoint: app.config.S3BaseEndpoint,
		Bucket:       app.config.S3Bucket,
	}
}

// Close releases the database and redis connections.
func (app *App) Close() error {
	var errs []error
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	app.closers = nil
	return errors.Join(errs...)
}

// Run serves until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "Starting app...")

	err := app.server.Run(ctx)

	if cErr := app.Close(); cErr != nil {
		app.logger.Error(ctx, "close failed", "error", cErr)
	}
	app.logger.Info(ctx, "App stopped")
	return err
}
