package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runPath string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pipeline once and print the records as JSON",
	Long:  "One-shot run: discovers the listing at --path (default site.listing_path), enriches every candidate and writes the JSON array to stdout.",
	RunE:  runOnce,
}

func init() {
	runCmd.Flags().StringVar(&runPath, "path", "", "listing path or URL on the configured site")
	rootCmd.AddCommand(runCmd)
}

func runOnce(cmd *cobra.Command, args []string) error {
	logger, err := setupLogger(debug)
	if err != nil {
		return err
	}
	defer logger.Sync()

	cfg, err := loadConfig(logger)
	if err != nil {
		return err
	}
	listingURL, err := cfg.ListingURL(runPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := initTelemetry(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer shutdownTracing()

	recs, err := buildPipeline(cfg, logger).Run(ctx, listingURL)
	if err != nil {
		logger.Error("run failed", zap.String("url", listingURL), zap.Error(err))
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(recs)
}
