package workflow

import (
	"context"
	"sync"
	"time"
)

// runTracker follows outstanding dispatched work per run so the top-level
// function knows when downstream handlers have settled. Keys are idempotent:
// expecting or completing the same key twice is a no-op, which absorbs
// at-least-once event delivery.
type runTracker struct {
	mu   sync.Mutex
	runs map[string]*runState
}

type runState struct {
	pending map[string]bool
	waiters []chan struct{}
}

func newRunTracker() *runTracker {
	return &runTracker{runs: make(map[string]*runState)}
}

// track opens tracking for a run. Runs are tracked from pipeline start to
// forget; expectations arriving outside that window are dropped.
func (t *runTracker) track(runID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.runs[runID] == nil {
		t.runs[runID] = &runState{pending: make(map[string]bool)}
	}
}

// expect registers a unit of dispatched work for a run. Untracked runs are
// ignored so a late handler cannot resurrect an entry after forget.
func (t *runTracker) expect(runID, key string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	state := t.runs[runID]
	if state == nil {
		return
	}
	if _, seen := state.pending[key]; !seen {
		state.pending[key] = false
	}
}

// complete marks a unit of work done. Unknown keys and repeats are ignored.
func (t *runTracker) complete(runID, key string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	state := t.runs[runID]
	if state == nil {
		return
	}
	done, seen := state.pending[key]
	if !seen || done {
		return
	}
	state.pending[key] = true

	if state.settled() {
		for _, waiter := range state.waiters {
			close(waiter)
		}
		state.waiters = nil
	}
}

// wait blocks until every expected key for the run is complete, the timeout
// elapses, or ctx is done. It reports whether the run settled.
func (t *runTracker) wait(ctx context.Context, runID string, timeout time.Duration) bool {
	t.mu.Lock()
	state := t.runs[runID]
	if state == nil || state.settled() {
		t.mu.Unlock()
		return true
	}
	waiter := make(chan struct{})
	state.waiters = append(state.waiters, waiter)
	t.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-waiter:
		return true
	case <-timer.C:
		return false
	case <-ctx.Done():
		return false
	}
}

// forget releases tracking state once a run is closed.
func (t *runTracker) forget(runID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if state := t.runs[runID]; state != nil {
		for _, waiter := range state.waiters {
			close(waiter)
		}
	}
	delete(t.runs, runID)
}

func (s *runState) settled() bool {
	for _, done := range s.pending {
		if !done {
			return false
		}
	}
	return true
}
