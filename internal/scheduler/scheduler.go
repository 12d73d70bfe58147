package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type Task func(ctx context.Context) error

// Every runs task immediately and then on each tick until ctx is done. Runs
// never overlap: a tick that fires while task is still running is skipped.
func Every(ctx context.Context, interval time.Duration, name string, logger *zap.Logger, task Task) {
	log := logger.With(zap.String("task", name))
	t := time.NewTicker(interval)
	defer t.Stop()

	run := func() {
		start := time.Now()
		if err := task(ctx); err != nil {
			log.Error("task failed", zap.Error(err), zap.Duration("took", time.Since(start)))
			return
		}
		log.Debug("task done", zap.Duration("took", time.Since(start)))
	}

	run()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			run()
		}
	}
}
