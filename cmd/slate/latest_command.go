package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLatestCommand(ctx *commandContext) *cobra.Command {
	var excludeMaster bool
	var wedge string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "latest <entity> <product>",
		Short: "Show the newest usable version of a product",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := parseContext(args[0], args[1])
			if err != nil {
				return err
			}
			records, err := ctx.scanner.Scan(cmd.Context(), c)
			if err != nil {
				return err
			}
			rec, ok, err := ctx.scanner.Latest(cmd.Context(), records, !excludeMaster, wedge)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no usable version of %s found", args[1])
			}
			preferred, _, err := ctx.scanner.PreferredFile(cmd.Context(), rec)
			if err != nil {
				return err
			}

			label := rec.FolderName()
			if rec.IsMaster() {
				label = ctx.manager.Label(cmd.Context(), rec.Path)
			}

			if jsonOutput {
				return writeJSON(cmd, map[string]any{
					"version":       rec.Version,
					"wedge":         rec.Wedge,
					"path":          rec.Path,
					"locations":     rec.Locations,
					"preferredFile": preferred,
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Version:  %s\n", label)
			fmt.Fprintf(out, "Path:     %s\n", rec.Path)
			if preferred != "" {
				fmt.Fprintf(out, "File:     %s\n", preferred)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&excludeMaster, "no-master", false, "Ignore the master alias")
	cmd.Flags().StringVar(&wedge, "wedge", "", "Restrict to one wedge identity")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of text")
	return cmd
}

func newNextCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "next <entity> <product>",
		Short: "Show the next version number a product would receive",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := parseContext(args[0], args[1])
			if err != nil {
				return err
			}
			version, err := ctx.scanner.NextVersion(cmd.Context(), c)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), version)
			return nil
		},
	}
}
