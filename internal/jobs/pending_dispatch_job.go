package jobs

import (
	"context"
	"log/slog"
	"time"

	"orderflow/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// DefaultPendingDispatchSchedule runs the sweep every two minutes.
const DefaultPendingDispatchSchedule = "0 */2 * * * *"

type RetryPendingDispatchHandler interface {
	Handle(ctx context.Context, cmd commands.RetryPendingDispatchCommand) (commands.RetryPendingDispatchResult, error)
}

// PendingDispatchJobConfig controls the sweep.
type PendingDispatchJobConfig struct {
	Schedule    string
	MaxAttempts int
	BatchSize   int
	Timeout     time.Duration
	// IdleFor is how long an order must sit after a failed attempt before the
	// sweep claims it again.
	IdleFor time.Duration
}

// PendingDispatchJob books couriers for delivery orders whose dispatch failed
// during submission.
type PendingDispatchJob struct {
	handler RetryPendingDispatchHandler
	config  PendingDispatchJobConfig
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewPendingDispatchJob creates the job. Zero config values fall back to the
// default schedule, 5 attempts, batches of 20, a one minute run timeout and a
// five minute idle period.
func NewPendingDispatchJob(handler RetryPendingDispatchHandler, cfg PendingDispatchJobConfig, logger *slog.Logger) *PendingDispatchJob {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultPendingDispatchSchedule
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 20
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Minute
	}
	if cfg.IdleFor <= 0 {
		cfg.IdleFor = 5 * time.Minute
	}
	return &PendingDispatchJob{
		handler: handler,
		config:  cfg,
		cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:  logger.With("component", "pending_dispatch_job"),
	}
}

// Start schedules the sweep.
func (j *PendingDispatchJob) Start() error {
	if _, err := j.cron.AddFunc(j.config.Schedule, j.run); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Pending dispatch job started", "schedule", j.config.Schedule)
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (j *PendingDispatchJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Pending dispatch job stopped")
}

func (j *PendingDispatchJob) run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.config.Timeout)
	defer cancel()

	if _, err := j.RunOnce(ctx); err != nil {
		j.logger.ErrorContext(ctx, "Pending dispatch job failed", "error", err)
	}
}

// RunOnce performs a single sweep.
func (j *PendingDispatchJob) RunOnce(ctx context.Context) (commands.RetryPendingDispatchResult, error) {
	cmd, err := commands.NewRetryPendingDispatchCommand(j.config.MaxAttempts, j.config.BatchSize, j.config.IdleFor)
	if err != nil {
		return commands.RetryPendingDispatchResult{}, err
	}

	result, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		return result, err
	}

	if result.Scanned > 0 {
		j.logger.InfoContext(ctx, "Pending dispatch sweep finished",
			"scanned", result.Scanned, "dispatched", result.Dispatched, "failed", result.Failed,
			"released", result.Released)
	}
	return result, nil
}
