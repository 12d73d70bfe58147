package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jobscout-engine/internal/events"
	"jobscout-engine/internal/httpapi"
)

var serveHost string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the scrape API over HTTP",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "interface to listen on")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger, err := setupLogger(debug)
	if err != nil {
		return err
	}
	defer logger.Sync()

	cfg, err := loadConfig(logger)
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

	var cfgVal atomic.Value // stores config.Config
	cfgVal.Store(cfg)

	handler := httpapi.NewHandler(httpapi.Deps{
		Logger:      logger,
		Hub:         events.NewHub(),
		Runner:      buildPipeline(cfg, logger),
		CfgVal:      &cfgVal,
		UserCfgPath: resolveConfigPath(),
		Status:      &httpapi.StatusTracker{},
	})

	addr := fmt.Sprintf("%s:%d", serveHost, cfg.App.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("engine listening", zap.String("addr", "http://"+addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(sctx)
}
