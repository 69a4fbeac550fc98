package workflow

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"reelcast/internal/config"
	"reelcast/internal/logging"
)

// Scheduler fires the daily pipeline on its cron expression.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
	spec   string
	run    func(context.Context)
}

// NewScheduler builds a Scheduler invoking run on the configured schedule.
func NewScheduler(cfg *config.Config, logger *slog.Logger, run func(context.Context)) *Scheduler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scheduler{
		cron:   cron.New(),
		logger: logger.With(logging.String(logging.FieldComponent, "scheduler")),
		spec:   cfg.Pipeline.Cron,
		run:    run,
	}
}

// Start registers the cron entry and begins scheduling.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.logger.Info("scheduled pipeline trigger", logging.String("cron", s.spec))
		s.run(ctx)
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("scheduler started", logging.String("cron", s.spec))
	return nil
}

// Stop halts scheduling and waits for a running invocation to return.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
}
