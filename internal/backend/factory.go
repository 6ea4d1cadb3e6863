package backend

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	gsheet "shopfloor/internal/source/google"
	"shopfloor/internal/source/memory"
	"shopfloor/internal/source/rest"
	"shopfloor/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case MemoryBackend:
		return f.createMemoryBackend(config)
	case RESTBackend:
		return f.createRESTBackend(config)
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	store, err := memory.NewFromFile(config.SeedFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize memory backend: %w", err)
	}

	f.logger.Info("Initialized memory backend", "seed_file", config.SeedFile, "entries", store.Len())

	return &BackendResult{
		Type:    MemoryBackend,
		Fetcher: store,
		Store:   store,
		Ping:    func(context.Context) error { return nil },
	}, nil
}

func (f *DefaultFactory) createRESTBackend(config Config) (*BackendResult, error) {
	timeout := config.BackendTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client, err := rest.New(config.BackendBaseURL, timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize REST backend: %w", err)
	}

	f.logger.Info("Initialized REST backend", "base_url", config.BackendBaseURL, "timeout", timeout)

	return &BackendResult{
		Type:    RESTBackend,
		Fetcher: client,
		Ping:    func(context.Context) error { return nil },
	}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Type:    SQLiteBackend,
		Fetcher: repo,
		Store:   repo,
		Archive: repo,
		Ping:    repo.Ping,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	cli, err := gsheet.New(ctx, gsheet.Options{
		SpreadsheetID:   config.GoogleSpreadsheetID,
		SheetName:       config.GoogleSheetName,
		CredentialsJSON: config.GoogleServiceAccountJSON,
		CredentialsFile: config.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend", "sheet", config.GoogleSheetName)

	return &BackendResult{
		Type:    SheetsBackend,
		Fetcher: cli,
		Ping:    func(context.Context) error { return nil },
	}, nil
}
