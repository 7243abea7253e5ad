package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/delta10/gibs-fetcher/internal/catalog"
	"github.com/delta10/gibs-fetcher/internal/config"
	"github.com/delta10/gibs-fetcher/internal/download"
	"github.com/delta10/gibs-fetcher/internal/wms"
)

var dryRun bool

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download one image per layer and date of the stored catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, client, err := loadConfig()
		if err != nil {
			return err
		}

		c, err := catalog.Load(cfg.Output.JSON)
		if os.IsNotExist(err) {
			return errors.Wrap(download.ErrCatalogNotLoaded, cfg.Output.JSON)
		}
		if err != nil {
			return err
		}

		return downloadCatalog(cmd.Context(), cfg, client, c)
	},
}

func init() {
	downloadCmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the requests without downloading")
	rootCmd.AddCommand(downloadCmd)
}

func downloadCatalog(ctx context.Context, cfg *config.Config, client *wms.Client, c *catalog.Catalog) error {
	if c != nil && cfg.Rewrite != "" {
		rewritten, err := catalog.Rewrite(ctx, c, cfg.Rewrite)
		if err != nil {
			return err
		}
		log.Printf("rewrite kept %d of %d layers", rewritten.Len(), c.Len())
		c = rewritten
	}

	downloader := newDownloader(cfg, client)

	if dryRun {
		plan, err := downloader.Plan(c)
		if err != nil {
			return err
		}
		for _, request := range plan {
			fmt.Printf("%s\t%s\n", request.Path, request.URL)
		}
		return nil
	}

	report, err := downloader.Download(ctx, c)
	if err != nil {
		return err
	}

	log.Printf("downloaded %d images, %d failed", len(report.Succeeded()), len(report.Failed()))
	for _, result := range report.Failed() {
		log.Printf("failed %s: %s", result.Path, result.Err)
	}

	return nil
}
