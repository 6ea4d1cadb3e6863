package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"shopfloor/internal/analytics"
	applog "shopfloor/internal/log"
)

func newReportCmd(app *App) *cobra.Command {
	var (
		format  string
		align   string
		index   int
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Run one analytics pass and print the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "json" {
				return fmt.Errorf("unknown format %q: must be text or json", format)
			}
			opts := app.Options
			if cmd.Flags().Changed("align") {
				opts.Align = analytics.AlignPolicy(align)
				if !opts.Align.IsValid() {
					return fmt.Errorf("unknown align policy %q: must be compact or zero", align)
				}
			}
			if index >= len(analytics.Catalog()) {
				return fmt.Errorf("index %d out of range: catalog has %d definitions", index, len(analytics.Catalog()))
			}

			ctx := cmd.Context()
			fetcher, closer, err := app.Fetcher(ctx)
			if err != nil {
				return err
			}
			defer closeQuietly(app.Logger, closer)

			cfg := analytics.PassConfig{Options: opts}
			if app.Logger != nil {
				cfg.Logger = app.Logger.WithComponent(applog.ComponentAnalytics).Slog()
			}
			report, err := analytics.NewPass(fetcher, cfg).Run(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if format == "json" {
				if index >= 0 {
					return writeJSON(out, report.Definitions[index])
				}
				return writeJSON(out, report)
			}

			r := Renderer{Color: !noColor && ShouldColor(out)}
			if index >= 0 {
				_, err = fmt.Fprint(out, r.Definition(report.Definitions[index]))
				return err
			}
			_, err = fmt.Fprint(out, r.Report(report))
			return err
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	cmd.Flags().StringVar(&align, "align", "compact", "Series alignment: compact or zero")
	cmd.Flags().IntVar(&index, "index", -1, "Print only the definition at this catalog index")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	return cmd
}
