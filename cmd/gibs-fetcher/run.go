package main

import (
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch the capabilities, then download the images of the fresh catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, client, err := loadConfig()
		if err != nil {
			return err
		}

		c, err := fetchCatalog(cmd.Context(), cfg, client)
		if err != nil {
			return err
		}

		return downloadCatalog(cmd.Context(), cfg, client, c)
	},
}

func init() {
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the requests without downloading")
	rootCmd.AddCommand(runCmd)
}
