package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"depotkit/internal/archive"
	"depotkit/internal/history"
	"depotkit/internal/pipeline"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "fetch <appid|store-url>...",
		Short: "Fetch manifests and keys and install unlock artifacts",
		Long: `Fetch resolves each argument to an app id (numeric, store URL, or
steamdb URL), retrieves manifests and depot keys from the selected source,
and installs unlock artifacts for the detected mechanism.

The source is "auto" (rank all configured repos by freshness), an
"owner/repo" reference, or an archive endpoint name (see 'depotkit sources').`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			src := strings.TrimSpace(source)
			if _, ok := archive.SourceByName(src); !ok && src != "auto" && !strings.Contains(src, "/") {
				return fmt.Errorf("unknown source %q: use \"auto\", an owner/repo, or an archive name", src)
			}

			var opts []pipeline.Option
			store, err := history.Open(cfg.HistoryDBPath())
			if err != nil {
				logger.Warn("run history disabled", "error", err)
			} else {
				defer store.Close()
				opts = append(opts, pipeline.WithHistoryStore(store))
			}

			p, err := pipeline.New(cfg, logger, opts...)
			if err != nil {
				return err
			}
			summary, err := p.Run(cmd.Context(), args, src)
			if err != nil {
				return err
			}

			printSummary(cmd, summary)
			if summary.Succeeded == 0 {
				return fmt.Errorf("no identifiers processed successfully")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "auto", "Content source: auto, owner/repo, or archive name")
	return cmd
}

func printSummary(cmd *cobra.Command, summary *pipeline.Summary) {
	rows := make([][]string, 0, len(summary.Results))
	for _, r := range summary.Results {
		rows = append(rows, []string{
			r.AppID,
			r.Status,
			fmt.Sprintf("%d", r.Keys),
			fmt.Sprintf("%d", r.Manifests),
			r.Detail,
		})
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderTable(
		[]string{"App ID", "Status", "Keys", "Manifests", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft}))
	fmt.Fprintf(out, "%d succeeded, %d failed (region: %s)\n",
		summary.Succeeded, summary.Failed, summary.Region)
}
