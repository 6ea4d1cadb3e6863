package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"time"

	"shopfloor/internal/cli"
	apphttp "shopfloor/internal/http"
	applog "shopfloor/internal/log"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.SetupLogger("info", applog.ComponentApp).Error("Configuration validation failed", applog.FieldError, err.Error())
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg.LogLevel, applog.ComponentApp)

	opts, err := cli.AnalyticsOptions(cfg)
	if err != nil {
		logger.Error("Invalid analytics options", applog.FieldError, err.Error())
		os.Exit(1)
	}

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	be, err := cli.InitBackend(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err.Error(), applog.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	defer be.Close()

	amqpClient, err := cli.InitAMQP(logger, cfg)
	if err != nil {
		// Reports are still served; they are just not announced.
		logger.Warn("AMQP unavailable, report events disabled", applog.FieldError, err.Error())
	}

	serverOpts := apphttp.Options{
		Addr:      net.JoinHostPort("", cfg.Port),
		Fetcher:   be.Fetcher,
		Ready:     be.Ping,
		Analytics: opts,
		Logger:    logger,
		CacheTTL:  cfg.CacheTTL,
		CacheSize: cfg.CacheSize,
		RateLimit: cfg.RateLimit,

		TrustedProxies: cfg.TrustedProxies,
	}
	if be.Archive != nil {
		serverOpts.Archive = be.Archive
	}
	if amqpClient != nil {
		defer amqpClient.Close()
		serverOpts.Publisher = amqpClient
	}

	srv := apphttp.NewServer(serverOpts)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 60 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err.Error())
		}
	}()

	logger.Info("Starting analytics server", applog.FieldOperation, applog.OpStartup, "port", cfg.Port, applog.FieldBackend, cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err.Error(), "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully", applog.FieldOperation, applog.OpShutdown)
}
