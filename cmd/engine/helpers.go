package main

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"jobscout-engine/internal/classify"
	"jobscout-engine/internal/config"
	"jobscout-engine/internal/scrape"
	"jobscout-engine/internal/scrape/backend"
	"jobscout-engine/internal/scrape/util"
	"jobscout-engine/internal/telemetry"
)

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func buildBackend(cfg config.Config, logger *zap.Logger) backend.Backend {
	limiter := util.NewHostLimiter(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst)

	switch cfg.Backend.Kind {
	case config.BackendScripted:
		logger.Info("using scripted backend",
			zap.Bool("headless", cfg.Backend.Scripted.Headless),
			zap.Strings("blocked", cfg.Backend.Scripted.BlockResourceTypes),
		)
		return backend.NewScripted(backend.ScriptedOptions{
			UserAgent:            cfg.Backend.UserAgent,
			Headful:              !cfg.Backend.Scripted.Headless,
			NavigationTimeout:    seconds(cfg.Backend.Scripted.NavigationTimeoutSeconds),
			WaitTimeout:          seconds(cfg.Backend.Scripted.WaitTimeoutSeconds),
			BlockedResourceTypes: cfg.Backend.Scripted.BlockResourceTypes,
			Limiter:              limiter,
		}, logger)
	default:
		return backend.NewStatic(backend.StaticOptions{
			Client:    &http.Client{Timeout: seconds(cfg.Backend.Static.TimeoutSeconds)},
			UserAgent: cfg.Backend.UserAgent,
			Limiter:   limiter,
		}, logger)
	}
}

func buildPipeline(cfg config.Config, logger *zap.Logger) *scrape.Pipeline {
	opts := scrape.Options{
		Discover: scrape.DiscoverOptions{
			ItemSelector:    cfg.Discovery.ItemSelector,
			TitleSelector:   cfg.Discovery.TitleSelector,
			CompanySelector: cfg.Discovery.CompanySelector,
			MaxCandidates:   cfg.Discovery.MaxCandidates,
		},
		Enrich: scrape.EnrichOptions{
			DescriptionSelectors:    cfg.Detail.DescriptionSelectors,
			DateSelectors:           cfg.Detail.DateSelectors,
			LocationSelectors:       cfg.Detail.LocationSelectors,
			EmploymentTypeSelectors: cfg.Detail.EmploymentTypeSelectors,
			WaitFor:                 cfg.Detail.WaitFor,
		},
		Concurrency: cfg.Pipeline.Concurrency,
		RunTimeout:  cfg.RunTimeout(),
	}
	return scrape.New(buildBackend(cfg, logger), classify.New(cfg.Classification.Categories), opts, logger)
}

// initTelemetry installs the tracer provider and returns its shutdown.
func initTelemetry(ctx context.Context, cfg config.Config, logger *zap.Logger) (func(), error) {
	shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.CollectorURL)
	if err != nil {
		return nil, err
	}
	if cfg.Telemetry.CollectorURL != "" {
		logger.Info("tracing enabled", zap.String("collector", cfg.Telemetry.CollectorURL))
	}
	return func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			logger.Warn("telemetry shutdown", zap.Error(err))
		}
	}, nil
}
