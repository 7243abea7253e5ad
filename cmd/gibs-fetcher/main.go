package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/delta10/gibs-fetcher/internal/config"
	"github.com/delta10/gibs-fetcher/internal/download"
	"github.com/delta10/gibs-fetcher/internal/wms"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "gibs-fetcher",
	Short:         "Fetch layer metadata and imagery from a WMS service",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the config file")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatalln(err)
	}
}

func loadConfig() (*config.Config, *wms.Client, error) {
	cfg, err := config.NewConfig(configPath)
	if err != nil {
		return nil, nil, err
	}

	return cfg, wms.NewClient(cfg.BaseURL, cfg.Timeout, cfg.RequestsPerSecond), nil
}

func mapParams(cfg *config.Config) wms.MapParams {
	return wms.MapParams{
		Version: cfg.GetMap.Version,
		Format:  cfg.GetMap.Format,
		Style:   cfg.GetMap.Style,
		Width:   cfg.GetMap.Width,
		Height:  cfg.GetMap.Height,
	}
}

func newDownloader(cfg *config.Config, client *wms.Client) *download.Downloader {
	return &download.Downloader{
		Client:   client,
		Params:   mapParams(cfg),
		ImageDir: cfg.Output.ImageDir,
	}
}
