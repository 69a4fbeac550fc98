package steps

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"reelcast/internal/config"
	"reelcast/internal/logging"
	"reelcast/internal/services"
	"reelcast/internal/store"
)

const maxBackoff = 30 * time.Second

// StepError is the terminal failure of a step. Replayed is true when the
// failure came from the memoization record rather than a fresh execution.
type StepError struct {
	RunID    string
	StepID   string
	Message  string
	Replayed bool
	Attempts int
}

func (e *StepError) Error() string {
	if e.Replayed {
		return fmt.Sprintf("step %s: %s (replayed)", e.StepID, e.Message)
	}
	return fmt.Sprintf("step %s: %s", e.StepID, e.Message)
}

// Option customizes an Executor.
type Option func(*Executor)

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(context.Context, time.Duration) error) Option {
	return func(e *Executor) {
		if sleeper != nil {
			e.sleep = sleeper
		}
	}
}

// Executor runs step bodies with memoization, per-attempt timeouts, and
// transient-failure retries.
type Executor struct {
	store     *store.Store
	logger    *slog.Logger
	retries   int
	timeout   time.Duration
	baseDelay time.Duration
	sleep     func(context.Context, time.Duration) error
}

// NewExecutor builds an Executor from the pipeline retry policy.
func NewExecutor(st *store.Store, cfg *config.Config, logger *slog.Logger, opts ...Option) *Executor {
	if logger == nil {
		logger = logging.NewNop()
	}
	executor := &Executor{
		store:     st,
		logger:    logger.With(logging.String(logging.FieldComponent, "steps")),
		retries:   cfg.Pipeline.StepRetries,
		timeout:   cfg.StepTimeout(),
		baseDelay: cfg.RetryBackoff(),
		sleep:     sleepContext,
	}
	for _, opt := range opts {
		opt(executor)
	}
	return executor
}

// Run executes fn at most once per (run, step) pair. A previously recorded
// outcome is replayed without invoking fn. Returns the step's output bytes.
func (e *Executor) Run(ctx context.Context, runID, stepID string, fn func(context.Context) ([]byte, error)) ([]byte, error) {
	stepCtx := services.WithStepID(services.WithRunID(ctx, runID), stepID)
	logger := logging.WithContext(stepCtx, e.logger)

	cached, err := e.store.GetStepResult(ctx, runID, stepID)
	if err != nil {
		return nil, fmt.Errorf("load step result: %w", err)
	}
	if cached != nil {
		return e.replay(logger, runID, stepID, cached)
	}

	output, runErr := e.execute(stepCtx, logger, fn)

	result := &store.StepResult{
		RunID:  runID,
		StepID: stepID,
		Output: output,
	}
	if runErr != nil {
		result.Failed = true
		result.ErrorMessage = runErr.Error()
		result.Output = nil
	}
	if err := e.store.PutStepResult(ctx, result); err != nil {
		return nil, fmt.Errorf("record step result: %w", err)
	}

	// A concurrent duplicate may have won the insert race; the stored
	// record is authoritative either way.
	stored, err := e.store.GetStepResult(ctx, runID, stepID)
	if err != nil {
		return nil, fmt.Errorf("reload step result: %w", err)
	}
	if stored == nil {
		return nil, fmt.Errorf("step result vanished for %s/%s", runID, stepID)
	}
	if stored.Failed {
		return nil, &StepError{RunID: runID, StepID: stepID, Message: stored.ErrorMessage}
	}
	return stored.Output, nil
}

func (e *Executor) replay(logger *slog.Logger, runID, stepID string, cached *store.StepResult) ([]byte, error) {
	if cached.Failed {
		logger.Debug("replaying memoized step failure")
		return nil, &StepError{
			RunID:    runID,
			StepID:   stepID,
			Message:  cached.ErrorMessage,
			Replayed: true,
		}
	}
	logger.Debug("replaying memoized step result")
	return cached.Output, nil
}

func (e *Executor) execute(ctx context.Context, logger *slog.Logger, fn func(context.Context) ([]byte, error)) ([]byte, error) {
	attempts := e.retries + 1
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		output, err := e.runAttempt(ctx, fn)
		if err == nil {
			return output, nil
		}
		lastErr = err

		if !services.Retryable(err) {
			logger.Warn("step failed permanently",
				logging.Int("attempt", attempt),
				logging.Error(err))
			return nil, err
		}
		if attempt == attempts {
			break
		}

		delay := e.backoff(attempt)
		logger.Warn("step attempt failed, retrying",
			logging.Int("attempt", attempt),
			logging.Duration("delay", delay),
			logging.Error(err))
		if sleepErr := e.sleep(ctx, delay); sleepErr != nil {
			return nil, sleepErr
		}
	}

	return nil, fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}

func (e *Executor) runAttempt(ctx context.Context, fn func(context.Context) ([]byte, error)) ([]byte, error) {
	if e.timeout <= 0 {
		return fn(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	return fn(attemptCtx)
}

func (e *Executor) backoff(attempt int) time.Duration {
	delay := e.baseDelay
	if delay <= 0 {
		delay = time.Second
	}
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= maxBackoff {
			return maxBackoff
		}
	}
	if delay > maxBackoff {
		return maxBackoff
	}
	return delay
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Do executes fn as a memoized step, marshaling its result as the step
// output and unmarshaling on replay.
func Do[T any](ctx context.Context, e *Executor, runID, stepID string, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	output, err := e.Run(ctx, runID, stepID, func(ctx context.Context) ([]byte, error) {
		value, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("encode step output: %w", err)
		}
		return encoded, nil
	})
	if err != nil {
		return zero, err
	}

	var value T
	if len(output) == 0 {
		return zero, nil
	}
	if err := json.Unmarshal(output, &value); err != nil {
		return zero, fmt.Errorf("decode step output: %w", err)
	}
	return value, nil
}
