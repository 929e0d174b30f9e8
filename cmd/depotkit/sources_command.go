package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"depotkit/internal/archive"
)

func newSourcesCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "sources",
		Short:       "List the available archive endpoints",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0, 8)
			for _, s := range archive.Sources() {
				rows = append(rows, []string{s.Name, s.Label, s.URL("{appid}")})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Name", "Label", "URL pattern"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft}))
			return nil
		},
	}
}
