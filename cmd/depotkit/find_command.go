package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"depotkit/internal/storefront"
)

func newFindCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "find <name>...",
		Short: "Search the storefront for a game's app id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			timeout := time.Duration(cfg.Network.RequestTimeout) * time.Second
			client := storefront.New(timeout, logger)
			games, err := client.Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(games))
			for _, g := range games {
				rows = append(rows, []string{strconv.Itoa(g.AppID), g.Name, g.Type})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"App ID", "Name", "Type"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft}))
			return nil
		},
	}
}
