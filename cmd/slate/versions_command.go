package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionsCommand(ctx *commandContext) *cobra.Command {
	var locationFlags []string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "versions <entity> <product>",
		Short: "List the versions of a product",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := parseContext(args[0], args[1])
			if err != nil {
				return err
			}
			records, err := ctx.scanner.Scan(cmd.Context(), c, locationFlags...)
			if err != nil {
				return err
			}

			if jsonOutput {
				type row struct {
					Version   string   `json:"version"`
					Wedge     string   `json:"wedge,omitempty"`
					Locations []string `json:"locations"`
					Path      string   `json:"path"`
					Comment   string   `json:"comment,omitempty"`
				}
				rows := make([]row, 0, len(records))
				for _, rec := range records {
					comment, _ := ctx.scanner.Comment(cmd.Context(), rec.Path)
					rows = append(rows, row{
						Version:   rec.Version,
						Wedge:     rec.Wedge,
						Locations: rec.Locations,
						Path:      rec.Path,
						Comment:   comment,
					})
				}
				return writeJSON(cmd, rows)
			}

			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No versions found")
				return nil
			}
			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				comment, _ := ctx.scanner.Comment(cmd.Context(), rec.Path)
				rows = append(rows, []string{
					rec.FolderName(),
					joinList(rec.Locations),
					comment,
					rec.Path,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"version", "locations", "comment", "path"}, rows))
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&locationFlags, "location", "l", nil, "Restrict to the named locations")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	return cmd
}
