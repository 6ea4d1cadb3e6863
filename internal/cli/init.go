// Package cli provides the bootstrap shared by the binaries under cmd/ and
// the analyticsctl command tree.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"shopfloor/internal/amqp"
	"shopfloor/internal/analytics"
	"shopfloor/internal/backend"
	"shopfloor/internal/config"
	applog "shopfloor/internal/log"
)

// SetupLogger builds the text logger for level and sets it as the default.
// An unknown level falls back to info.
func SetupLogger(level, component string) *applog.Logger {
	cfg := applog.DefaultConfig()
	if lvl, err := applog.ParseLevel(level); err == nil {
		cfg.Level = lvl
	}
	cfg.Component = component
	logger := applog.New(cfg)
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// AnalyticsOptions maps the configuration onto pass options.
func AnalyticsOptions(cfg *config.Config) (analytics.Options, error) {
	loc, err := cfg.Location()
	if err != nil {
		return analytics.Options{}, fmt.Errorf("time zone: %w", err)
	}
	return analytics.Options{
		Align:    analytics.AlignPolicy(cfg.AlignPolicy),
		Location: loc,
	}, nil
}

// InitBackend builds the configured snapshot backend.
func InitBackend(ctx context.Context, logger *applog.Logger, cfg *config.Config) (*backend.BackendResult, error) {
	bc, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	return backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Slog()).CreateBackend(ctx, bc)
}

// InitAMQP returns a client, or nil when AMQP_URL is unset.
func InitAMQP(logger *applog.Logger, cfg *config.Config) (*amqp.Client, error) {
	if cfg.AMQPURL == "" {
		logger.Info("AMQP disabled - no AMQP_URL provided")
		return nil, nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, cfg.AMQPReportQueue)
	if err != nil {
		return nil, fmt.Errorf("initialize AMQP client: %w", err)
	}
	logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return client, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(logger *applog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
