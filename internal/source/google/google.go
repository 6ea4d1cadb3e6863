package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"shopfloor/internal/core"
	applog "shopfloor/internal/log"
	"shopfloor/internal/source"
)

var _ source.TimeEntryReader = (*Client)(nil)

// Client reads time entries from one sheet whose first row is a header.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// Options select the sheet and the service account used to read it.
// CredentialsJSON wins over CredentialsFile.
type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

// New creates a read-only Sheets client.
func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	sheetName := strings.TrimSpace(opts.SheetName)
	if sheetName == "" {
		sheetName = "TimeEntries"
	}

	svc, err := newSheetsService(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{svc: svc, spreadsheetID: opts.SpreadsheetID, sheetName: sheetName}, nil
}

func newSheetsService(ctx context.Context, opts Options) (*gsheet.Service, error) {
	var credentialsJSON []byte
	switch {
	case strings.TrimSpace(opts.CredentialsJSON) != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(opts.CredentialsJSON)
	case opts.CredentialsFile != "":
		data, err := os.ReadFile(opts.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		slog.InfoContext(ctx, "Read credentials file", "path", opts.CredentialsFile, "size", len(data))
		credentialsJSON = data
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// FetchTimeEntries reads the whole sheet as one snapshot, in row order.
func (c *Client) FetchTimeEntries(ctx context.Context) ([]core.RawTimeEntry, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:Z", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}

	entries, err := parseTimeEntries(resp.Values)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", c.sheetName, err)
	}

	slog.InfoContext(ctx, "Read time entries from sheet",
		applog.FieldComponent, applog.ComponentSheets,
		applog.FieldOperation, applog.OpParse,
		"sheet", c.sheetName,
		"rows", len(resp.Values),
		"entries", len(entries))
	return entries, nil
}
