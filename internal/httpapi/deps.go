package httpapi

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/events"
	"jobscout-engine/internal/scrape"
)

// Runner runs one discovery plus enrichment pass. *scrape.Pipeline
// satisfies it.
type Runner interface {
	Backend() string
	RunObserved(ctx context.Context, listingURL string, obs scrape.Observer) ([]domain.DetailRecord, error)
}

type Deps struct {
	Logger *zap.Logger
	Hub    *events.Hub
	Runner Runner

	CfgVal      *atomic.Value // stores config.Config
	UserCfgPath string

	Status *StatusTracker
}
