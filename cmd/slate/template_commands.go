package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var flattenOnly bool

	cmd := &cobra.Command{
		Use:   "resolve <template> [token=value ...]",
		Short: "Expand a structure template into a path",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver := ctx.project.Resolver()
			if flattenOnly {
				flat, err := resolver.Flatten(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), flat)
				return nil
			}

			tokens := map[string]string{"root": ctx.cfg.Project.Root}
			for _, arg := range args[1:] {
				key, value, found := strings.Cut(arg, "=")
				if !found || key == "" {
					return fmt.Errorf("token arguments take the form key=value, got %q", arg)
				}
				tokens[key] = value
			}
			path, err := resolver.Resolve(args[0], tokens)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&flattenOnly, "flatten", false, "Print the expanded template instead of resolving tokens")
	return cmd
}

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "extract <template> <path>",
		Short: "Recover template tokens from an existing path",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, ok, err := ctx.project.Resolver().Extract(args[1], args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("path does not match template %s", args[0])
			}

			if jsonOutput {
				return writeJSON(cmd, fields)
			}
			keys := make([]string, 0, len(fields))
			for key := range fields {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			rows := make([][]string, 0, len(keys))
			for _, key := range keys {
				rows = append(rows, []string{key, fields[key]})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"token", "value"}, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	return cmd
}
