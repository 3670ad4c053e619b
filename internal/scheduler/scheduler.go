// Package scheduler repeats the scrape job on a fixed interval.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Job is one unit of scheduled work.
type Job func(ctx context.Context) error

// Scheduler runs a Job every interval, starting immediately. Runs never
// overlap: a tick waits for the previous run to finish.
type Scheduler struct {
	scheduler *gocron.Scheduler
	interval  time.Duration
	logger    *slog.Logger
}

// New creates a Scheduler. It does nothing until Start is called.
func New(interval time.Duration, logger *slog.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules job and starts the underlying scheduler. Each run receives
// ctx; job errors are logged and do not stop the schedule.
func (s *Scheduler) Start(ctx context.Context, job Job) error {
	if s.interval <= 0 {
		return errors.New("schedule interval must be positive")
	}

	_, err := s.scheduler.Every(s.interval).Do(func() {
		if ctx.Err() != nil {
			return
		}
		s.logger.Debug("scheduled run starting")
		if err := job(ctx); err != nil {
			s.logger.Error("scheduled run failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.logger.Info("scheduler started", "interval", s.interval)
	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler. Future runs are cancelled.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	s.logger.Info("scheduler stopped")
}
