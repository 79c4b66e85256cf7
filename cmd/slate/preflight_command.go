package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"slate/internal/preflight"
)

func newPreflightCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "preflight",
		Short: "Check that the configured storage roots are usable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			results := preflight.RunAll(ctx.cfg)
			if jsonOutput {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				rows := make([][]string, 0, len(results))
				for _, result := range results {
					rows = append(rows, []string{result.Name, passFail(result.Passed), result.Detail})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"check", "status", "detail"}, rows))
			}

			for _, result := range results {
				if !result.Passed {
					return fmt.Errorf("preflight checks failed")
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	return cmd
}
