package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"shopfloor/internal/analytics"
	"shopfloor/internal/core"
	applog "shopfloor/internal/log"
	"shopfloor/internal/worker"
)

// Closer releases what a provider opened. It may be nil.
type Closer func() error

// TimeEntryPublisher sends raw entries to the ingest exchange.
type TimeEntryPublisher interface {
	PublishTimeEntries(ctx context.Context, entries []core.RawTimeEntry) error
}

// App holds what the commands need. Providers are called lazily so that a
// command only opens the resources it uses.
type App struct {
	Options  analytics.Options
	Logger   *applog.Logger
	Backends []string

	Fetcher   func(ctx context.Context) (analytics.Fetcher, Closer, error)
	Store     func(ctx context.Context) (worker.TimeEntryStore, Closer, error)
	Publisher func(ctx context.Context) (TimeEntryPublisher, Closer, error)
}

// NewRootCmd creates the top-level "analyticsctl" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "analyticsctl",
		Short:         "Shop-floor time-entry analytics",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newReportCmd(app),
		newIngestCmd(app),
		newPublishCmd(app),
		newBackendsCmd(app),
	)

	return root
}

func closeQuietly(logger *applog.Logger, c Closer) {
	if c == nil {
		return
	}
	if err := c(); err != nil && logger != nil {
		logger.Warn("Failed to release resource", applog.FieldError, err.Error())
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

func newBackendsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List the snapshot backends DATA_BACKEND accepts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, b := range app.Backends {
				fmt.Fprintln(cmd.OutOrStdout(), b)
			}
			return nil
		},
	}
}
