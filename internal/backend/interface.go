package backend

import (
	"context"
	"time"

	"shopfloor/internal/analytics"
	"shopfloor/internal/source"
)

// ReportArchive stores resolved passes.
type ReportArchive interface {
	SaveReport(ctx context.Context, report analytics.Report) error
	LatestReport(ctx context.Context) (analytics.Report, error)
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult holds what a configured backend offers. Store and Archive
// are nil when the backend is read-only.
type BackendResult struct {
	Type    BackendType
	Fetcher source.TimeEntryReader
	Store   source.TimeEntryWriter
	Archive ReportArchive
	Ping    func(ctx context.Context) error
	Cleanup CleanupFunc
}

// Close runs the cleanup function, if any.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// Memory specific
	SeedFile string

	// REST specific
	BackendBaseURL string
	BackendTimeout time.Duration

	// SQLite specific
	SQLiteDBPath string

	// Google Sheets specific
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	RESTBackend   BackendType = "rest"
	SQLiteBackend BackendType = "sqlite"
	SheetsBackend BackendType = "sheets"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, RESTBackend, SQLiteBackend, SheetsBackend:
		return true
	default:
		return false
	}
}

// Writable reports whether ingested entries can be stored in the backend.
func (bt BackendType) Writable() bool {
	return bt == MemoryBackend || bt == SQLiteBackend
}
