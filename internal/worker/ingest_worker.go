package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"shopfloor/internal/amqp"
	"shopfloor/internal/core"
	applog "shopfloor/internal/log"
)

// TimeEntryStore persists validated time entries.
type TimeEntryStore interface {
	AppendTimeEntries(ctx context.Context, entries []core.TimeEntry) (int, error)
}

// IngestResult counts what happened to one batch.
type IngestResult struct {
	Received int `json:"received"`
	Rejected int `json:"rejected"`
	Inserted int `json:"inserted"`
}

// IngestWorker validates raw time entries and stores the valid ones
type IngestWorker struct {
	store    TimeEntryStore
	location *time.Location
	onStored func(IngestResult)
}

// NewIngestWorker creates a worker. Zone-less timestamps are read in loc;
// nil means UTC.
func NewIngestWorker(store TimeEntryStore, loc *time.Location) *IngestWorker {
	if loc == nil {
		loc = time.UTC
	}
	return &IngestWorker{store: store, location: loc}
}

// OnStored registers a callback run after every batch that inserted rows.
func (w *IngestWorker) OnStored(fn func(IngestResult)) {
	w.onStored = fn
}

// HandleTimeEntries processes one AMQP message. Invalid entries are
// dropped and logged; only storage failures are returned, so the message
// is requeued.
func (w *IngestWorker) HandleTimeEntries(ctx context.Context, msg *amqp.TimeEntryRecordedMessage) error {
	slog.InfoContext(ctx, "Processing time entry message",
		applog.FieldMessageID, msg.ID,
		applog.FieldEntries, len(msg.Entries))

	res, err := w.Ingest(ctx, msg.Entries)
	if err != nil {
		return fmt.Errorf("ingest message %s: %w", msg.ID, err)
	}

	slog.InfoContext(ctx, "Processed time entry message",
		applog.FieldMessageID, msg.ID,
		"inserted", res.Inserted,
		applog.FieldRejected, res.Rejected)
	return nil
}

// Ingest normalizes raws and appends the valid entries to the store.
func (w *IngestWorker) Ingest(ctx context.Context, raws []core.RawTimeEntry) (IngestResult, error) {
	entries, rejected := core.NormalizeAll(raws, w.location)
	res := IngestResult{Received: len(raws), Rejected: len(rejected)}

	for _, r := range rejected {
		slog.WarnContext(ctx, "Rejected time entry",
			applog.FieldOperation, applog.OpIngest,
			"index", r.Index,
			applog.FieldError, r.Err.Error())
	}

	if len(entries) == 0 {
		return res, nil
	}

	n, err := w.store.AppendTimeEntries(ctx, entries)
	if err != nil {
		return res, fmt.Errorf("store time entries: %w", err)
	}
	res.Inserted = n

	if n > 0 && w.onStored != nil {
		w.onStored(res)
	}
	return res, nil
}
