package cli

import (
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/ericfisherdev/keyprov/internal/adapter/driven/keycloak"
	"github.com/ericfisherdev/keyprov/internal/adapter/driven/prompt"
	"github.com/ericfisherdev/keyprov/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/keyprov/internal/adapter/driven/threescale"
	"github.com/ericfisherdev/keyprov/internal/adapter/driven/tokencache"
	"github.com/ericfisherdev/keyprov/internal/application"
	"github.com/ericfisherdev/keyprov/internal/config"
)

// app bundles the wired flow for one command invocation.
type app struct {
	provisioner *application.Provisioner
	prompter    *prompt.Terminal
	logger      *slog.Logger
	errOut      io.Writer
	close       func()
}

// newApp loads configuration and wires adapters and services. It fails fast
// on a missing required environment variable.
func newApp(o *options) (*app, error) {
	logger := newLogger(o.verbose)

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Debug("config loaded",
		"keycloak_url", cfg.KeycloakURL,
		"keycloak_realm", cfg.KeycloakRealm,
		"admin_api_url", cfg.AdminAPIURL,
		"token_cache", cfg.TokenCachePath,
		"db_path", cfg.DBPath,
		"http_timeout", cfg.HTTPTimeout,
	)

	db, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	idp := keycloak.NewClient(cfg.KeycloakURL, cfg.KeycloakRealm, cfg.KeycloakClientID, cfg.KeycloakClientSecret, httpClient, logger)
	admin := threescale.NewClient(cfg.AdminAPIURL, cfg.AdminAPIKey, cfg.HTTPTimeout, logger)
	cache := tokencache.New(cfg.TokenCachePath, logger)
	prompter := prompt.New()
	history := sqlite.NewHistoryRepo(db, cfg.SecretKey)

	auth := application.NewAuthenticator(idp, cache, prompter, logger)
	accounts := application.NewAccountService(admin, prompter, logger)
	catalog := application.NewCatalog(admin, logger)
	keys := application.NewKeyService(catalog, admin, logger)
	provisioner := application.NewProvisioner(auth, accounts, catalog, keys, history, logger)

	return &app{
		provisioner: provisioner,
		prompter:    prompter,
		logger:      logger,
		errOut:      os.Stderr,
		close: func() {
			if err := db.Close(); err != nil {
				logger.Warn("error closing database", "error", err)
			}
		},
	}, nil
}

// newLogger builds the logger every component receives. Diagnostics go to
// stderr so stdout stays reserved for results.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}
