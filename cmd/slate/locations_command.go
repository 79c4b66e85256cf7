package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"slate/internal/locations"
)

func newLocationsCommand(ctx *commandContext) *cobra.Command {
	var kindFlag string

	cmd := &cobra.Command{
		Use:   "locations",
		Short: "Manage storage locations",
	}
	cmd.PersistentFlags().StringVarP(&kindFlag, "kind", "k", "product", "Location kind (product or media)")

	kind := func() (locations.Kind, error) {
		switch kindFlag {
		case "product":
			return locations.Product, nil
		case "media":
			return locations.Media, nil
		}
		return "", fmt.Errorf("unknown location kind %q", kindFlag)
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List the configured locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := kind()
			if err != nil {
				return err
			}
			locs, err := ctx.registry.Locations(cmd.Context(), k)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(locs))
			for _, loc := range locs {
				rows = append(rows, []string{loc.Name, loc.Path})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"name", "root"}, rows))
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add <name> <root>",
		Short: "Add or update a custom location",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := kind()
			if err != nil {
				return err
			}
			if err := ctx.registry.Add(cmd.Context(), k, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Location %s -> %s\n", args[0], args[1])
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a custom location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := kind()
			if err != nil {
				return err
			}
			if err := ctx.registry.Remove(cmd.Context(), k, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Location %s removed\n", args[0])
			return nil
		},
	}

	convert := &cobra.Command{
		Use:   "convert <path> <from> <to>",
		Short: "Rewrite a path from one location root to another",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := kind()
			if err != nil {
				return err
			}
			converted, err := ctx.registry.Convert(cmd.Context(), k, args[0], args[1], args[2])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), converted)
			return nil
		},
	}

	cmd.AddCommand(list, add, remove, convert)
	return cmd
}
