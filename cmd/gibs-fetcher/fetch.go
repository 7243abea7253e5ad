package main

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"github.com/delta10/gibs-fetcher/internal/catalog"
	"github.com/delta10/gibs-fetcher/internal/config"
	"github.com/delta10/gibs-fetcher/internal/wms"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch the capabilities and write the layer catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, client, err := loadConfig()
		if err != nil {
			return err
		}

		_, err = fetchCatalog(cmd.Context(), cfg, client)
		return err
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func fetchCatalog(ctx context.Context, cfg *config.Config, client *wms.Client) (*catalog.Catalog, error) {
	c, skipped, err := catalog.Fetch(ctx, client)
	if err != nil {
		return nil, err
	}
	for _, skip := range skipped {
		log.Printf("skipped %s", skip)
	}

	if err := catalog.Save(c, cfg.Output.JSON, cfg.Output.TSV); err != nil {
		return nil, err
	}
	log.Printf("wrote %s and %s", cfg.Output.JSON, cfg.Output.TSV)

	return c, nil
}
