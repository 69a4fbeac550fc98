package workflow

import (
	"context"
	"log/slog"
	"time"

	"reelcast/internal/config"
	"reelcast/internal/logging"
	"reelcast/internal/notifications"
	"reelcast/internal/store"
)

// Reaper fails runs that have been running past the stuck threshold. It is
// the backstop for crashed or wedged processes; a healthy run is closed by
// its own top-level function well inside the threshold.
type Reaper struct {
	store     *store.Store
	logger    *slog.Logger
	notifier  notifications.Service
	threshold time.Duration
	interval  time.Duration
	now       func() time.Time
}

// NewReaper builds a Reaper from the pipeline timing config.
func NewReaper(st *store.Store, cfg *config.Config, logger *slog.Logger) *Reaper {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Reaper{
		store:     st,
		logger:    logger.With(logging.String(logging.FieldComponent, "reaper")),
		notifier:  notifications.NewService(cfg),
		threshold: cfg.StuckThreshold(),
		interval:  cfg.SweepInterval(),
		now:       time.Now,
	}
}

// Sweep fails every run started more than the stuck threshold ago and
// returns the number of runs reaped. Safe to call concurrently; the store's
// compare-and-set writes make overlapping sweeps idempotent.
func (r *Reaper) Sweep(ctx context.Context) (int, error) {
	cutoff := r.now().UTC().Add(-r.threshold)
	reaped, err := r.store.ReapStuckRuns(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if reaped > 0 {
		r.logger.Warn("reaped stuck runs", logging.Int("count", reaped))
		if err := r.notifier.NotifyRunsReaped(ctx, reaped); err != nil {
			r.logger.Warn("notification failed", logging.Error(err))
		}
	}
	return reaped, nil
}

// Run sweeps on the configured interval until ctx is done.
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.Sweep(ctx); err != nil && ctx.Err() == nil {
				r.logger.Error("sweep failed", logging.Error(err))
			}
		}
	}
}
