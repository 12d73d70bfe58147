package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jobscout-engine/internal/scheduler"
)

var (
	watchPath  string
	watchEvery time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the pipeline periodically",
	Long:  "Runs the pipeline now and then every --every, writing one JSON array per run to stdout. Stops on SIGINT/SIGTERM.",
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchPath, "path", "", "listing path or URL on the configured site")
	watchCmd.Flags().DurationVar(&watchEvery, "every", 0, "interval between runs (default watch.interval_seconds)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	logger, err := setupLogger(debug)
	if err != nil {
		return err
	}
	defer logger.Sync()

	cfg, err := loadConfig(logger)
	if err != nil {
		return err
	}
	listingURL, err := cfg.ListingURL(watchPath)
	if err != nil {
		return err
	}
	interval := watchEvery
	if interval <= 0 {
		interval = cfg.WatchInterval()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := initTelemetry(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer shutdownTracing()

	p := buildPipeline(cfg, logger)
	var mu sync.Mutex
	enc := json.NewEncoder(os.Stdout)

	logger.Info("watching", zap.String("url", listingURL), zap.Duration("every", interval))
	scheduler.Every(ctx, interval, "watch", logger, func(ctx context.Context) error {
		recs, err := p.Run(ctx, listingURL)
		if err != nil {
			return err
		}
		mu.Lock()
		defer mu.Unlock()
		return enc.Encode(recs)
	})
	logger.Info("watch stopped")
	return nil
}
