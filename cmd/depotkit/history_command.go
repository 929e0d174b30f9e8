package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"depotkit/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recent runs, or one run's per-identifier outcomes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg.HistoryDBPath())
			if err != nil {
				return err
			}
			defer store.Close()

			if len(args) == 1 {
				return printRunItems(cmd, store, args[0])
			}
			return printRuns(cmd, store, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list")
	return cmd
}

func printRuns(cmd *cobra.Command, store *history.Store, limit int) error {
	runs, err := store.RecentRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		finished := "-"
		if !r.FinishedAt.IsZero() {
			finished = r.FinishedAt.Local().Format(time.RFC3339)
		}
		rows = append(rows, []string{
			history.ShortID(r.ID),
			r.StartedAt.Local().Format(time.RFC3339),
			finished,
			r.Mode,
			r.Region,
			r.Source,
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"Run", "Started", "Finished", "Mode", "Region", "Source"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft}))
	return nil
}

func printRunItems(cmd *cobra.Command, store *history.Store, runID string) error {
	items, err := store.Items(cmd.Context(), runID)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return fmt.Errorf("no items recorded for run %q", runID)
	}

	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, []string{
			it.AppID,
			it.Status,
			strconv.Itoa(it.KeyCount),
			strconv.Itoa(it.ManifestCount),
			it.Detail,
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"App ID", "Status", "Keys", "Manifests", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft}))
	return nil
}
