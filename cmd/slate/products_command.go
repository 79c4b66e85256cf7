package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"slate/internal/project"
)

func newProductsCommand(ctx *commandContext) *cobra.Command {
	var locationFlags []string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "products <entity>",
		Short: "List the product streams under an entity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, err := project.ParseEntity(args[0])
			if err != nil {
				return err
			}
			products, err := ctx.scanner.Products(cmd.Context(), entity, locationFlags...)
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, products)
			}
			if len(products) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No products found")
				return nil
			}
			rows := make([][]string, 0, len(products))
			for _, product := range products {
				rows = append(rows, []string{product.Name, joinList(product.Locations)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"product", "locations"}, rows))
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&locationFlags, "location", "l", nil, "Restrict to the named locations")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	return cmd
}
