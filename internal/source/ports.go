// Package source holds the snapshot sources a pass can read from.
package source

import (
	"context"

	"shopfloor/internal/core"
)

// Ports for outbound adapters.
type (
	// TimeEntryReader returns one complete snapshot of raw time entries.
	TimeEntryReader interface {
		FetchTimeEntries(ctx context.Context) ([]core.RawTimeEntry, error)
	}

	// TimeEntryWriter appends validated time entries and reports how many
	// were new.
	TimeEntryWriter interface {
		AppendTimeEntries(ctx context.Context, entries []core.TimeEntry) (int, error)
	}

	// TimeEntryStore is a source that can also be ingested into.
	TimeEntryStore interface {
		TimeEntryReader
		TimeEntryWriter
	}
)
