package main

import (
	"github.com/spf13/cobra"

	"github.com/delta10/gibs-fetcher/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the stored catalog and images over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		s := &server.Server{
			CatalogPath: cfg.Output.JSON,
			ImageDir:    cfg.Output.ImageDir,
			BaseURL:     cfg.BaseURL,
			Params:      mapParams(cfg),
		}

		return s.ListenAndServe(cfg.ListenAddress)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
