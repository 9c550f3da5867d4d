package usecase

import (
	"context"
	"log/slog"
	"time"

	"DataPipeline/internal/domain"
	"DataPipeline/internal/ports"
)

// Scheduler wires the interval driver with the full-run use case.
type Scheduler struct {
	driver ports.Scheduler
	runner *Runner
	logger *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring runs.
func NewScheduler(driver ports.Scheduler, runner *Runner, logger *slog.Logger) *Scheduler {
	return &Scheduler{driver: driver, runner: runner, logger: orDiscard(logger)}
}

// Start registers the runner with the provided scheduler. Failed runs are
// logged and the schedule continues.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.runner == nil {
		return nil
	}

	job := func(trigger time.Time) {
		s.logger.Info("scheduled run triggered", "at", trigger.Format(time.RFC3339))
		summary, err := s.runner.Run(ctx)
		if err != nil {
			s.logger.Error("scheduled run failed", "run_id", summary.Run.ID, "stage", summary.Run.Stage, "error", err, "kind", domain.Classify(err))
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
