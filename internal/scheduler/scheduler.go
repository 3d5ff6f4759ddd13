// Package scheduler drives the hourly wake-fetch-render-sleep loop.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"weatherstation/internal/clock"
	"weatherstation/internal/station"
)

// cycleBudget bounds one whole wake cycle. Well under the hour so an
// unresponsive upstream can never bleed into the next wake.
const cycleBudget = 2 * time.Minute

// Scheduler runs a station cycle on every hour boundary. The schedule is
// fixed; the cache decides on each wake what actually needs fetching.
type Scheduler struct {
	scheduler *gocron.Scheduler
	station   *station.Station
	log       *slog.Logger
}

// New creates a Scheduler around the given station.
func New(st *station.Station, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.Local),
		station:   st,
		log:       logger,
	}
}

// Start schedules the hourly job and runs the first cycle immediately so the
// display is populated right after boot instead of at the next boundary.
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Cron("0 * * * *").Do(s.runCycle); err != nil {
		return err
	}
	s.scheduler.StartAsync()
	s.scheduler.RunAll()

	s.log.Info("scheduler started", "nextWakeIn", clock.UntilNextWake(time.Now()).String())
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func (s *Scheduler) runCycle() {
	ctx, cancel := context.WithTimeout(context.Background(), cycleBudget)
	defer cancel()

	if err := s.station.RunCycle(ctx); err != nil {
		// Time could not be established; nothing was touched. The next
		// hourly wake is the retry.
		s.log.Warn("cycle skipped", "error", err,
			"retryIn", clock.UntilNextWake(time.Now()).String())
	}
}
