package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"shopfloor/internal/analytics"
	"shopfloor/internal/core"
	applog "shopfloor/internal/log"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

type SQLiteRepository struct {
	db *sql.DB
}

var _ analytics.Fetcher = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// AppendTimeEntries stores entries in one transaction. Entries already
// stored (same project, employee, station and time) are skipped. It returns
// how many rows were inserted.
func (r *SQLiteRepository) AppendTimeEntries(ctx context.Context, entries []core.TimeEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO time_entries
			(project_id, employee_name, cost_center, station, job_type, part_count, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (project_id, employee_name, station, recorded_at) DO NOTHING`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, e := range entries {
		res, err := stmt.ExecContext(ctx,
			string(e.ProjectID), e.EmployeeName, e.CostCenter, e.Station, e.JobType, e.PartCount,
			e.Time.Format(time.RFC3339Nano))
		if err != nil {
			return 0, fmt.Errorf("insert time entry for project %s: %w", e.ProjectID, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit time entries: %w", err)
	}

	slog.InfoContext(ctx, "Time entries saved to SQLite",
		applog.FieldOperation, applog.OpAppend,
		"received", len(entries),
		"inserted", inserted)

	return inserted, nil
}

// FetchTimeEntries returns every stored entry in insertion order.
func (r *SQLiteRepository) FetchTimeEntries(ctx context.Context) ([]core.RawTimeEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT project_id, employee_name, cost_center, station, job_type, part_count, recorded_at
		FROM time_entries
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query time entries: %w", err)
	}
	defer rows.Close()

	out := make([]core.RawTimeEntry, 0)
	for rows.Next() {
		var (
			raw       core.RawTimeEntry
			projectID string
			partCount int
		)
		if err := rows.Scan(&projectID, &raw.EmployeeName, &raw.CostCenter, &raw.Station, &raw.JobType, &partCount, &raw.Time); err != nil {
			return nil, fmt.Errorf("scan time entry: %w", err)
		}
		raw.ProjectID = core.ProjectID(projectID)
		raw.PartCount = core.Count(partCount)
		out = append(out, raw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate time entries: %w", err)
	}
	return out, nil
}

// CountTimeEntries returns the number of stored entries.
func (r *SQLiteRepository) CountTimeEntries(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM time_entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count time entries: %w", err)
	}
	return n, nil
}

// SaveReport archives a resolved pass. Saving the same pass twice is a no-op.
func (r *SQLiteRepository) SaveReport(ctx context.Context, report analytics.Report) error {
	defs, err := json.Marshal(report.Definitions)
	if err != nil {
		return fmt.Errorf("encode report definitions: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO reports (pass_id, generated_at, entries, rejected, definitions)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (pass_id) DO NOTHING`,
		report.PassID, report.GeneratedAt.UTC().Format(time.RFC3339Nano), report.Entries, report.Rejected, string(defs))
	if err != nil {
		return fmt.Errorf("insert report %s: %w", report.PassID, err)
	}

	slog.InfoContext(ctx, "Report archived",
		applog.FieldOperation, applog.OpArchive,
		applog.FieldPassID, report.PassID,
		applog.FieldEntries, report.Entries)
	return nil
}

// LatestReport returns the most recently generated archived report.
func (r *SQLiteRepository) LatestReport(ctx context.Context) (analytics.Report, error) {
	var (
		report    analytics.Report
		generated string
		defs      string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT pass_id, generated_at, entries, rejected, definitions
		FROM reports
		ORDER BY generated_at DESC, created_at DESC
		LIMIT 1`).Scan(&report.PassID, &generated, &report.Entries, &report.Rejected, &defs)
	if errors.Is(err, sql.ErrNoRows) {
		return analytics.Report{}, ErrNotFound
	}
	if err != nil {
		return analytics.Report{}, fmt.Errorf("query latest report: %w", err)
	}

	if report.GeneratedAt, err = time.Parse(time.RFC3339Nano, generated); err != nil {
		return analytics.Report{}, fmt.Errorf("parse report time: %w", err)
	}
	if err := json.Unmarshal([]byte(defs), &report.Definitions); err != nil {
		return analytics.Report{}, fmt.Errorf("decode report definitions: %w", err)
	}
	return report, nil
}
