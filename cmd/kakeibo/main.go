package main

import (
	"context"
	"os"
	"time"

	"kakeibo/internal/auth"
	"kakeibo/internal/backend"
	"kakeibo/internal/cli"
	"kakeibo/internal/config"
	apphttp "kakeibo/internal/http"
	appLog "kakeibo/internal/log"
	"kakeibo/internal/services"
)

func main() {
	cli.LoadEnvFile()

	bootLogger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(bootLogger, (*config.Config).Validate)
	logger := cli.SetupLogger(cfg.LogLevel).WithComponent(appLog.ComponentApp)

	logger.Info("Starting kakeibo",
		appLog.FieldOperation, appLog.OpStartup,
		appLog.FieldBackend, cfg.DataBackend,
		"port", cfg.Port)

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	backendConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", appLog.FieldError, err)
		os.Exit(1)
	}
	b, err := backend.NewFactory(logger).CreateBackend(ctx, backendConfig)
	if err != nil {
		logger.Error("Failed to create backend", appLog.FieldError, err, appLog.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := b.Close(); err != nil {
			logger.Warn("Failed to close backend", appLog.FieldError, err)
		}
	}()

	authenticator, err := auth.NewPasswordAuthenticator(cfg.AccountID, cfg.AppPassword, cfg.AppPasswordHash)
	if err != nil {
		logger.Error("Failed to configure login", appLog.FieldError, err)
		os.Exit(1)
	}
	sessionStore, err := auth.NewSessionStore(cfg.SessionDir, []byte(cfg.SecretKey), cfg.SessionMaxAge, cfg.CookieSecure)
	if err != nil {
		logger.Error("Failed to create session store", appLog.FieldError, err, "dir", cfg.SessionDir)
		os.Exit(1)
	}
	gate := auth.NewGate(sessionStore, authenticator, logger)

	service := services.NewTransactionService(cfg.InitialBudget(), b.Events, logger)

	srv, err := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + cfg.Port,
		Gate:               gate,
		Service:            service,
		Ledgers:            b.Ledgers,
		Health:             b.Health,
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMin,
		TrustedProxies:     cfg.TrustedProxies,
	})
	if err != nil {
		logger.Error("Failed to create HTTP server", appLog.FieldError, err)
		os.Exit(1)
	}

	if err := cli.ServeHTTP(ctx, logger, srv.Addr, srv, 10*time.Second); err != nil {
		logger.Error("Server error", appLog.FieldError, err)
		// Deferred cleanup does not run after os.Exit.
		_ = b.Close()
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully", appLog.FieldOperation, appLog.OpShutdown)
}
