package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"depotkit/internal/unlocker"
)

func newDetectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "detect",
		Short: "Show the detected Steam install and unlock mechanism",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			root, err := unlocker.ResolveRoot(cfg.Paths.SteamPath)
			if err != nil {
				return err
			}
			mode := unlocker.DetectMode(root)
			policy := unlocker.PolicyFor(mode, cfg.Unlocker.AutoUpdateOnly, cfg.Unlocker.LockManifestVersion)

			rows := [][]string{
				{"Steam root", root},
				{"Unlock mechanism", mode.String()},
				{"Version policy", policy.String()},
				{"Force override", orDash(cfg.Unlocker.Force)},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Property", "Value"},
				rows,
				[]columnAlignment{alignLeft, alignLeft}))

			if mode == unlocker.Conflict {
				return unlocker.ErrConflict
			}
			return nil
		},
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
