package main

import (
	"context"
	"fmt"
	"os"

	"shopfloor/internal/analytics"
	"shopfloor/internal/backend"
	"shopfloor/internal/cli"
	applog "shopfloor/internal/log"
	"shopfloor/internal/storage"
	"shopfloor/internal/worker"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return err
	}
	// Logs go to stderr so report output stays clean.
	logCfg := applog.DefaultConfig()
	if lvl, err := applog.ParseLevel(cfg.LogLevel); err == nil {
		logCfg.Level = lvl
	}
	logCfg.Output = os.Stderr
	logCfg.Component = applog.ComponentCLI
	logger := applog.New(logCfg)
	applog.SetDefault(logger)

	opts, err := cli.AnalyticsOptions(cfg)
	if err != nil {
		return err
	}

	app := &cli.App{
		Options:  opts,
		Logger:   logger,
		Backends: backend.GetBackendTypeStrings(),
		Fetcher: func(ctx context.Context) (analytics.Fetcher, cli.Closer, error) {
			be, err := cli.InitBackend(ctx, logger, cfg)
			if err != nil {
				return nil, nil, err
			}
			return be.Fetcher, be.Close, nil
		},
		Store: func(ctx context.Context) (worker.TimeEntryStore, cli.Closer, error) {
			repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
			if err != nil {
				return nil, nil, err
			}
			return repo, repo.Close, nil
		},
		Publisher: func(ctx context.Context) (cli.TimeEntryPublisher, cli.Closer, error) {
			client, err := cli.InitAMQP(logger, cfg)
			if err != nil {
				return nil, nil, err
			}
			if client == nil {
				return nil, nil, fmt.Errorf("AMQP_URL is not set")
			}
			return client, client.Close, nil
		},
	}

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()
	return cli.NewRootCmd(app).ExecuteContext(ctx)
}
