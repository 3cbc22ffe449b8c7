// Package scheduler runs the batch pipelines on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
)

// DefaultSchedule runs once a day at 06:00.
const DefaultSchedule = "0 6 * * *"

// Job is one scheduled run.
type Job func(ctx context.Context) error

// Scheduler handles periodic pipeline runs. A run still in progress when the
// next tick fires causes that tick to be skipped.
type Scheduler struct {
	job     Job
	cron    *cron.Cron
	logger  arbor.ILogger
	timeout time.Duration

	// base parents every scheduled run; Stop cancels it.
	base   context.Context
	cancel context.CancelFunc
}

// NewScheduler creates a scheduler. timeout bounds each run; zero means 30 minutes.
func NewScheduler(job Job, logger arbor.ILogger, timeout time.Duration) *Scheduler {
	if logger == nil {
		logger = arbor.NewNoOpLogger()
	}
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	return &Scheduler{
		job:     job,
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:  logger,
		timeout: timeout,
	}
}

// Start registers the job on schedule (standard 5-field cron or a descriptor
// such as "@hourly") and starts the cron loop. Scheduled runs use a context
// derived from ctx, cancelled when ctx ends or Stop is called.
func (s *Scheduler) Start(ctx context.Context, schedule string) error {
	if schedule == "" {
		schedule = DefaultSchedule
	}

	base, cancel := context.WithCancel(ctx)
	_, err := s.cron.AddFunc(schedule, func() {
		_ = s.RunNow(base)
	})
	if err != nil {
		cancel()
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}
	s.base, s.cancel = base, cancel

	s.cron.Start()
	s.logger.Info().Str("schedule", schedule).Msg("Pipeline scheduler started")
	return nil
}

// Stop cancels any running job and waits for it to return.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("Pipeline scheduler stopped")
}

// RunNow runs the job synchronously under the configured timeout.
func (s *Scheduler) RunNow(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	s.logger.Info().Msg("Starting scheduled run")

	if err := s.job(ctx); err != nil {
		s.logger.Error().Err(err).Dur("duration", time.Since(start)).Msg("Scheduled run failed")
		return err
	}

	s.logger.Info().Dur("duration", time.Since(start)).Msg("Scheduled run completed")
	return nil
}
