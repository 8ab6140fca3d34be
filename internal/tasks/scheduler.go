package tasks

import (
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"

	"smartentrance/internal/config"
	"smartentrance/internal/utils/logger"
)

// Scheduler handles periodic task scheduling
type Scheduler struct {
	scheduler *asynq.Scheduler
	logger    *logger.Logger
}

// NewScheduler creates a new task scheduler
func NewScheduler(cfg config.RedisConfig, logger *logger.Logger) *Scheduler {
	scheduler := asynq.NewScheduler(RedisOpt(cfg), &asynq.SchedulerOpts{})

	return &Scheduler{
		scheduler: scheduler,
		logger:    logger,
	}
}

// NextRun validates a standard five-field cron expression and returns its next
// activation after from.
func NextRun(spec string, from time.Time) (time.Time, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}
	return schedule.Next(from), nil
}

// RegisterSweep schedules the orphaned upload sweep.
func (s *Scheduler) RegisterSweep(spec string) error {
	next, err := NextRun(spec, time.Now())
	if err != nil {
		return err
	}

	entryID, err := s.scheduler.Register(spec, asynq.NewTask(TaskTypeUploadSweep, nil),
		asynq.Queue(QueueLow),
		asynq.MaxRetry(RetryDefault),
		asynq.Timeout(TimeoutMedium),
	)
	if err != nil {
		return fmt.Errorf("failed to register %s: %w", TaskTypeUploadSweep, err)
	}

	s.logger.Info("registered %s (%s) entry %s, next run %s", TaskTypeUploadSweep, spec, entryID, next.Format(time.RFC3339))
	return nil
}

// Start runs the scheduler in the background
func (s *Scheduler) Start() error {
	s.logger.Info("starting task scheduler")
	return s.scheduler.Start()
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Shutdown()
	s.logger.Info("task scheduler stopped")
}
