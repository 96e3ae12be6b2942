package main

import (
	"github.com/deppfellow/vistual/internal/lib/utils"
	"github.com/deppfellow/vistual/internal/model/garment"
	"github.com/spf13/cobra"
)

func newCatalogCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Print the categories, colors and clothing types as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return utils.WriteJSON(cmd.OutOrStdout(), garment.GetCatalog())
		},
	}
}
