package usecase

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

type idleEvictor interface {
	EvictIdle(maxIdle time.Duration) int
}

// StartIdleSweeper - every interval, drops sessions idle for longer than maxIdle.
// The caller stops it with Shutdown.
func StartIdleSweeper(logger *slog.Logger, sessions idleEvictor, interval, maxIdle time.Duration) (gocron.Scheduler, error) {
	log := logger.With("component", "idle_sweeper")

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if evicted := sessions.EvictIdle(maxIdle); evicted > 0 {
				log.Debug("sweep finished", "evicted", evicted)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return nil, fmt.Errorf("failed to schedule sweep: %w", err)
	}

	scheduler.Start()
	log.Info("idle session sweeper started", "interval", interval, "maxIdle", maxIdle)

	return scheduler, nil
}
