package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	var comment string
	var location string
	var user string

	cmd := &cobra.Command{
		Use:   "ingest <entity> <product> <file> [file ...]",
		Short: "Copy files into a new numbered version",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := parseContext(args[0], args[1])
			if err != nil {
				return err
			}
			c.Comment = comment
			c.Location = location
			c.User = user

			result, err := ctx.ingestor.Ingest(cmd.Context(), c, args[2:])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created %s (%d files)\n", result.Version, result.Copied)
			fmt.Fprintln(out, result.VersionPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&comment, "comment", "m", "", "Comment stored with the version")
	cmd.Flags().StringVarP(&location, "location", "l", "", "Location to write the version to")
	cmd.Flags().StringVarP(&user, "user", "u", "", "User recorded on the version")
	return cmd
}
