// @title           P3 Biosecurity Portal API
// @version         1.0
// @description     Portal shell and accounts backend of the livestock biosecurity platform.
// @BasePath        /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/p3biosecurity/portal/internal/api"
	"github.com/p3biosecurity/portal/internal/api/handler"
	"github.com/p3biosecurity/portal/internal/api/middleware"
	"github.com/p3biosecurity/portal/internal/core/composer"
	"github.com/p3biosecurity/portal/internal/core/identity"
	"github.com/p3biosecurity/portal/internal/core/ports"
	"github.com/p3biosecurity/portal/internal/core/service"
	"github.com/p3biosecurity/portal/internal/core/session"
	"github.com/p3biosecurity/portal/internal/infrastructure/client"
	"github.com/p3biosecurity/portal/internal/infrastructure/config"
	mongodb "github.com/p3biosecurity/portal/internal/infrastructure/db/mongo"
	redisdb "github.com/p3biosecurity/portal/internal/infrastructure/db/redis"
	"github.com/p3biosecurity/portal/pkg/logger"
)

const shutdownGracePeriod = 10 * time.Second

func main() {
	cfg, err := config.Load(context.Background())
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	lg := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Development(),
		Service: "p3-portal",
		Env:     cfg.Env,
	})

	if err := run(cfg, lg); err != nil {
		lg.Fatal().Err(err).Msg("portal stopped")
	}
}

func run(cfg *config.Config, lg zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	health := make(map[string]handler.Pinger)

	var sessions ports.KeyValue
	switch cfg.Session.Backend {
	case config.SessionBackendMemory:
		lg.Warn().Msg("sessions are kept in process memory")
		sessions = session.NewMemoryKV()
	default:
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Timeout:  cfg.Redis.Timeout,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()
		health["redis"] = redisdb.Pinger{Client: rdb}
		sessions = redisdb.NewKV(rdb)
	}

	var (
		accounts       *service.AccountService
		accountHandler *handler.AccountHandler
	)
	if cfg.NeedsMongo() {
		mc, db, err := mongodb.Connect(ctx, mongodb.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			AppName:  "p3-portal",
			Timeout:  cfg.Mongo.Timeout,
		})
		if err != nil {
			return err
		}
		defer func() {
			dctx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
			defer cancel()
			_ = mc.Disconnect(dctx)
		}()
		health["mongo"] = mongodb.Pinger{DB: db}

		repo := mongodb.NewAccountRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			return err
		}
		accounts = service.NewAccountService(repo, cfg.JWTSecret, cfg.TokenTTL, logger.Component("accounts"))
		accountHandler = handler.NewAccountHandler(accounts)
	}

	var remote *client.Accounts
	if cfg.IdentityMode == config.IdentityModeRemote {
		remote = client.NewAccounts(cfg.Identity.BaseURL, nil, logger.Component("accounts-client"))
	}

	var authenticator ports.Authenticator
	switch {
	case cfg.AuthMode == config.AuthModeDemo:
		authenticator = service.NewDemoAuthenticator(logger.Component("demo-auth"))
	case remote != nil:
		authenticator = remote
	default:
		authenticator = accounts
	}

	var resolver identity.Resolver
	switch cfg.IdentityMode {
	case config.IdentityModeStored:
		resolver = identity.StoredResolver{}
	case config.IdentityModeRemote:
		resolver = identity.NewRemoteResolver(remote, cfg.Identity.Timeout, logger.Component("identity"))
	default:
		resolver = identity.NewRemoteResolver(accounts, cfg.Identity.Timeout, logger.Component("identity"))
	}

	policy, err := composer.ParseUnknownRolePolicy(cfg.UnknownRole)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	e := api.NewRouter(api.Dependencies{
		Log: lg,
		Portal: handler.NewPortalHandler(handler.PortalConfig{
			Sessions:      sessions,
			Resolver:      resolver,
			Authenticator: authenticator,
			Policy:        policy,
			SessionPrefix: cfg.Session.Prefix,
			SessionTTL:    cfg.Session.TTL,
			Log:           logger.Component("portal"),
		}),
		Accounts:  accountHandler,
		JWTSecret: cfg.JWTSecret,
		Scope:     middleware.ScopeConfig{Cookie: cfg.Session.Cookie, Secure: !cfg.Development()},
		Health:    health,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		lg.Info().
			Str("port", cfg.Port).
			Str("auth_mode", cfg.AuthMode).
			Str("identity_mode", cfg.IdentityMode).
			Msg("portal listening")
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		lg.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		lg.Error().Err(err).Msg("graceful server shutdown failed")
		return server.Close()
	}
	lg.Info().Msg("portal stopped")
	return nil
}
