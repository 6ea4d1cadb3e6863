package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"shopfloor/internal/cli"
	applog "shopfloor/internal/log"
	"shopfloor/internal/storage"
	"shopfloor/internal/worker"
)

const statusInterval = time.Minute

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.SetupLogger("info", applog.ComponentWorker).Error("Configuration validation failed", applog.FieldError, err.Error())
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg.LogLevel, applog.ComponentWorker)
	logger.Info("Starting analytics-worker", applog.FieldOperation, applog.OpStartup)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the ingest worker")
		os.Exit(1)
	}

	opts, err := cli.AnalyticsOptions(cfg)
	if err != nil {
		logger.Error("Invalid analytics options", applog.FieldError, err.Error())
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", applog.FieldError, err.Error(), "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	amqpClient, err := cli.InitAMQP(logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err.Error())
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	ingest := worker.NewIngestWorker(repo, opts.Location)
	ingest.OnStored(func(res worker.IngestResult) {
		logger.Debug("Time entries stored", "inserted", res.Inserted, applog.FieldRejected, res.Rejected)
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeTimeEntries(gctx, ingest.HandleTimeEntries)
	})
	g.Go(func() error {
		ticker := time.NewTicker(statusInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				n, err := repo.CountTimeEntries(gctx)
				if err != nil {
					logger.Warn("Failed to count stored time entries", applog.FieldError, err.Error())
					continue
				}
				logger.Info("Worker status", "stored_entries", n)
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", applog.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete", applog.FieldOperation, applog.OpShutdown)
}
