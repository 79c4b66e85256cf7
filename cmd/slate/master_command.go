package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"slate/internal/project"
	"slate/internal/prompt"
)

func newMasterCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "master",
		Short: "Maintain master versions",
	}
	cmd.AddCommand(newMasterUpdateCommand(ctx))
	cmd.AddCommand(newMasterOutdatedCommand(ctx))
	return cmd
}

func newMasterUpdateCommand(ctx *commandContext) *cobra.Command {
	var onBlocked string

	cmd := &cobra.Command{
		Use:   "update <version-path>",
		Short: "Recreate a product's master from a numbered version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if onBlocked != "" {
				choice, err := parseChoice(onBlocked)
				if err != nil {
					return err
				}
				if choice != prompt.Retry && choice != prompt.Quarantine && choice != prompt.Cancel {
					return fmt.Errorf("--on-blocked accepts retry, quarantine or cancel")
				}
				ctx.answer("master.delete-blocked", choice)
			}

			masterPath, err := ctx.manager.Update(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Master updated: %s\n",
				ctx.manager.Label(cmd.Context(), masterPath))
			fmt.Fprintln(cmd.OutOrStdout(), masterPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&onBlocked, "on-blocked", "",
		"What to do when the previous master cannot be deleted (retry, quarantine, cancel)")
	return cmd
}

func newMasterOutdatedCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "outdated <entity> [entity ...]",
		Short: "List masters that lag behind their latest version",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entities := make([]project.Entity, 0, len(args))
			for _, ref := range args {
				entity, err := project.ParseEntity(ref)
				if err != nil {
					return err
				}
				entities = append(entities, entity)
			}

			outdated, err := ctx.manager.FindOutdated(cmd.Context(), entities)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, outdated)
			}
			if len(outdated) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "All masters are current")
				return nil
			}
			rows := make([][]string, 0, len(outdated))
			for _, entry := range outdated {
				master := entry.MasterVersion
				if master == "" {
					master = "(none)"
				}
				rows = append(rows, []string{
					entry.Entity.Name(),
					entry.Product,
					master,
					entry.LatestVersion,
					entry.LatestPath,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"entity", "product", "master", "latest", "latest path"}, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	return cmd
}
