package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"shopfloor/internal/source/memory"
	"shopfloor/internal/worker"
)

func newIngestCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "ingest FILE",
		Short: "Validate a JSON array of time entries and store it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raws, err := memory.LoadFile(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, closer, err := app.Store(ctx)
			if err != nil {
				return err
			}
			defer closeQuietly(app.Logger, closer)

			res, err := worker.NewIngestWorker(store, app.Options.Location).Ingest(ctx, raws)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "received %d, rejected %d, inserted %d\n", res.Received, res.Rejected, res.Inserted)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}
