package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-progression-api/internal/service"
	"github.com/noah-isme/academic-progression-api/pkg/jobs"
)

const (
	// JobWarningSweep is the job type of a full warning evaluation pass.
	JobWarningSweep = "warning_sweep"

	sweepKey = "warning-sweep"

	TriggerDaily  = "daily"
	TriggerWeekly = "weekly"
	TriggerManual = "manual"
)

type sweeper interface {
	EvaluateAllActiveStudents(ctx context.Context, semesterLabel string) (*service.SweepResult, error)
}

// SweepRequest is the payload of a queued sweep.
type SweepRequest struct {
	Trigger       string
	SemesterLabel string
}

// Config controls the cron triggers and sweep retries.
type Config struct {
	Enabled    bool
	DailySpec  string
	WeeklySpec string
	Retries    int
	RetryDelay time.Duration
}

// WarningScheduler runs warning sweeps from cron triggers and on demand.
// Sweeps execute on a single-worker queue, so at most one runs at a time and
// triggers arriving while one is pending collapse into it.
type WarningScheduler struct {
	cfg     Config
	cron    *cron.Cron
	queue   *jobs.Queue
	sweeper sweeper
	logger  *zap.Logger
}

// New builds the scheduler; nothing runs until Start.
func New(sweeper sweeper, cfg Config, logger *zap.Logger) *WarningScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DailySpec == "" {
		cfg.DailySpec = "0 2 * * *"
	}
	if cfg.WeeklySpec == "" {
		cfg.WeeklySpec = "0 1 * * 0"
	}
	cronLog := cronLogger{logger.Sugar().Named("cron")}
	s := &WarningScheduler{
		cfg: cfg,
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		sweeper: sweeper,
		logger:  logger,
	}
	s.queue = jobs.NewQueue("warning-sweeps", s.handle, jobs.QueueConfig{
		Workers:    1,
		BufferSize: 4,
		MaxRetries: cfg.Retries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return s
}

// Start starts the sweep worker and, when enabled, the daily and weekly triggers.
func (s *WarningScheduler) Start(ctx context.Context) error {
	if s.cfg.Enabled {
		if _, err := s.cron.AddFunc(s.cfg.DailySpec, func() { s.fire(TriggerDaily) }); err != nil {
			return fmt.Errorf("schedule daily sweep: %w", err)
		}
		if _, err := s.cron.AddFunc(s.cfg.WeeklySpec, func() { s.fire(TriggerWeekly) }); err != nil {
			return fmt.Errorf("schedule weekly sweep: %w", err)
		}
	}
	s.queue.Start(ctx)
	if s.cfg.Enabled {
		s.cron.Start()
		s.logger.Info("warning scheduler started",
			zap.String("daily", s.cfg.DailySpec),
			zap.String("weekly", s.cfg.WeeklySpec))
	}
	return nil
}

// Trigger queues a sweep. It reports false when a sweep is already pending
// or running, in which case the request is absorbed by it.
func (s *WarningScheduler) Trigger(trigger, semesterLabel string) (bool, error) {
	err := s.queue.EnqueueUnique(jobs.Job{
		Type:    JobWarningSweep,
		Key:     sweepKey,
		Payload: SweepRequest{Trigger: trigger, SemesterLabel: semesterLabel},
	})
	if errors.Is(err, jobs.ErrDuplicate) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Stop halts the triggers, waits for a running trigger callback, then drains
// the worker.
func (s *WarningScheduler) Stop(ctx context.Context) {
	cronCtx := s.cron.Stop()
	select {
	case <-cronCtx.Done():
	case <-ctx.Done():
	}
	s.queue.Stop()
}

func (s *WarningScheduler) fire(trigger string) {
	queued, err := s.Trigger(trigger, "")
	if err != nil {
		s.logger.Error("failed to queue warning sweep", zap.String("trigger", trigger), zap.Error(err))
		return
	}
	if !queued {
		s.logger.Info("warning sweep already pending", zap.String("trigger", trigger))
	}
}

func (s *WarningScheduler) handle(ctx context.Context, job jobs.Job) error {
	req, _ := job.Payload.(SweepRequest)
	result, err := s.sweeper.EvaluateAllActiveStudents(ctx, req.SemesterLabel)
	if err != nil {
		return err
	}
	s.logger.Info("warning sweep completed",
		zap.String("job_id", job.ID),
		zap.String("trigger", req.Trigger),
		zap.String("semester_label", result.SemesterLabel),
		zap.Int("issued", result.Issued),
		zap.Int("resolved", result.Resolved),
		zap.Int("processed", result.Processed),
		zap.Int("failed", result.Failed))
	return nil
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	sugar *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}
