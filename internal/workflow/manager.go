package workflow

import (
	"context"
	"log/slog"
	"sync"

	"reelcast/internal/config"
	"reelcast/internal/events"
	"reelcast/internal/logging"
	"reelcast/internal/steps"
	"reelcast/internal/store"
)

// Manager owns the orchestrator's background machinery: event
// subscriptions, the cron trigger, and the reaper loop.
type Manager struct {
	cfg          *config.Config
	store        *store.Store
	router       *events.Router
	orchestrator *Orchestrator
	reaper       *Reaper
	scheduler    *Scheduler
	logger       *slog.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewManager wires an orchestrator with its router, reaper, and scheduler.
func NewManager(cfg *config.Config, st *store.Store, router *events.Router, adapters Adapters, logger *slog.Logger, opts ...steps.Option) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	executor := steps.NewExecutor(st, cfg, logger, opts...)
	orchestrator := NewOrchestrator(cfg, st, executor, router, adapters, logger)

	manager := &Manager{
		cfg:          cfg,
		store:        st,
		router:       router,
		orchestrator: orchestrator,
		reaper:       NewReaper(st, cfg, logger),
		logger:       logger.With(logging.String(logging.FieldComponent, "manager")),
	}
	manager.scheduler = NewScheduler(cfg, logger, func(ctx context.Context) {
		if _, err := orchestrator.RunDaily(ctx); err != nil {
			manager.logger.Error("scheduled run failed", logging.Error(err))
		}
	})
	return manager
}

// Orchestrator exposes the workflow functions for the API layer.
func (m *Manager) Orchestrator() *Orchestrator {
	return m.orchestrator
}

// Reaper exposes the stuck-run reaper for on-demand sweeps.
func (m *Manager) Reaper() *Reaper {
	return m.reaper
}

// Start subscribes the handlers and launches the scheduler and reaper loop.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)

	subscriptions := []struct {
		name    string
		label   string
		handler events.Handler
	}{
		{events.NameVideoGenerate, "videogen", m.orchestrator.HandleVideoGenerate},
		{events.NamePublish, "publisher", m.orchestrator.HandlePublish},
		{events.NamePipelineTest, "testrun", m.orchestrator.HandlePipelineTest},
	}
	for _, sub := range subscriptions {
		if err := m.router.Subscribe(sub.name, sub.label, sub.handler); err != nil {
			cancel()
			return err
		}
	}

	if err := m.scheduler.Start(runCtx); err != nil {
		cancel()
		return err
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.reaper.Run(runCtx)
	}()

	m.cancel = cancel
	m.running = true
	m.logger.Info("workflow manager started")
	return nil
}

// Stop halts the scheduler and reaper and drains the router.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	cancel := m.cancel
	m.mu.Unlock()

	m.scheduler.Stop()
	cancel()
	m.wg.Wait()
	m.router.Close()
	m.logger.Info("workflow manager stopped")
}
