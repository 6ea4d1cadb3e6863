package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"shopfloor/internal/core"
	applog "shopfloor/internal/log"
	"shopfloor/internal/source/memory"
)

func newPublishCmd(app *App) *cobra.Command {
	var batch int

	cmd := &cobra.Command{
		Use:   "publish FILE",
		Short: "Send a JSON array of time entries to the ingest exchange",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if batch < 1 {
				return fmt.Errorf("batch must be at least 1, got %d", batch)
			}
			loaded, err := memory.LoadFile(args[0])
			if err != nil {
				return err
			}
			// Malformed records would lose their bad fields on re-encoding.
			raws := make([]core.RawTimeEntry, 0, len(loaded))
			for i, raw := range loaded {
				if err := raw.DecodeErr(); err != nil {
					app.Logger.Warn("Skipping malformed time entry", "index", i, applog.FieldError, err.Error())
					continue
				}
				raws = append(raws, raw)
			}
			if skipped := len(loaded) - len(raws); skipped > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "skipped %d malformed entries\n", skipped)
			}
			if len(raws) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing to publish")
				return nil
			}

			ctx := cmd.Context()
			pub, closer, err := app.Publisher(ctx)
			if err != nil {
				return err
			}
			defer closeQuietly(app.Logger, closer)

			messages := 0
			for start := 0; start < len(raws); start += batch {
				end := min(start+batch, len(raws))
				if err := pub.PublishTimeEntries(ctx, raws[start:end]); err != nil {
					return fmt.Errorf("publish entries %d-%d: %w", start, end-1, err)
				}
				messages++
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "published %d entries in %d messages\n", len(raws), messages)
			return err
		},
	}

	cmd.Flags().IntVar(&batch, "batch", 500, "Entries per message")
	return cmd
}
