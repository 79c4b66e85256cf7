package main

import (
	"github.com/spf13/cobra"

	"slate/internal/prompt"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var forceRelease bool
	var resetCorrupt bool

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:           "slate",
		Short:         "Versioned product storage for VFX pipelines",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			if forceRelease {
				ctx.answer("confstore.write-locked", prompt.ForceRelease)
				ctx.answer("confstore.read-locked", prompt.ForceRelease)
			}
			if resetCorrupt {
				ctx.answer("confstore.corrupt", prompt.Reset)
			}
			return ctx.ensure()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().BoolVar(&forceRelease, "force-release", false, "Break stale document locks instead of failing")
	rootCmd.PersistentFlags().BoolVar(&resetCorrupt, "reset-corrupt", false, "Replace unreadable documents with an empty one")

	rootCmd.AddCommand(newVersionsCommand(ctx))
	rootCmd.AddCommand(newLatestCommand(ctx))
	rootCmd.AddCommand(newNextCommand(ctx))
	rootCmd.AddCommand(newProductsCommand(ctx))
	rootCmd.AddCommand(newResolveCommand(ctx))
	rootCmd.AddCommand(newExtractCommand(ctx))
	rootCmd.AddCommand(newLocationsCommand(ctx))
	rootCmd.AddCommand(newMasterCommand(ctx))
	rootCmd.AddCommand(newIngestCommand(ctx))
	rootCmd.AddCommand(newPreflightCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
