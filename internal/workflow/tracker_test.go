package workflow

import (
	"context"
	"testing"
	"time"
)

func TestTrackerSettlesWhenAllKeysComplete(t *testing.T) {
	tracker := newRunTracker()
	tracker.track("run1")
	tracker.expect("run1", "script:a")
	tracker.expect("run1", "script:b")

	go func() {
		tracker.complete("run1", "script:a")
		tracker.complete("run1", "script:b")
	}()

	if !tracker.wait(context.Background(), "run1", 2*time.Second) {
		t.Fatal("expected tracker to settle")
	}
}

func TestTrackerWaitTimesOutOnOutstandingWork(t *testing.T) {
	tracker := newRunTracker()
	tracker.track("run1")
	tracker.expect("run1", "script:a")

	if tracker.wait(context.Background(), "run1", 20*time.Millisecond) {
		t.Fatal("expected timeout with outstanding work")
	}
}

func TestTrackerDuplicateKeysAreIdempotent(t *testing.T) {
	tracker := newRunTracker()
	tracker.track("run1")
	tracker.expect("run1", "script:a")
	tracker.expect("run1", "script:a")
	tracker.complete("run1", "script:a")
	tracker.complete("run1", "script:a")

	if !tracker.wait(context.Background(), "run1", time.Second) {
		t.Fatal("expected settled state after duplicate expect/complete")
	}
}

func TestTrackerUnknownRunIsSettled(t *testing.T) {
	tracker := newRunTracker()
	if !tracker.wait(context.Background(), "missing", time.Second) {
		t.Fatal("a run with no dispatched work is settled")
	}
}

func TestTrackerExpectDuringWaitExtendsSettlement(t *testing.T) {
	tracker := newRunTracker()
	tracker.track("run1")
	tracker.expect("run1", "script:a")

	go func() {
		// Chained expectation registered before its parent completes.
		tracker.expect("run1", "publish:v1")
		tracker.complete("run1", "script:a")
		tracker.complete("run1", "publish:v1")
	}()

	if !tracker.wait(context.Background(), "run1", 2*time.Second) {
		t.Fatal("expected tracker to settle after chained work")
	}
}

func TestTrackerExpectAfterForgetIsDropped(t *testing.T) {
	tracker := newRunTracker()
	tracker.track("run1")
	tracker.expect("run1", "script:a")
	tracker.forget("run1")

	// A late handler reporting in after the run closed must not leave
	// state behind.
	tracker.expect("run1", "publish:v1")

	tracker.mu.Lock()
	_, tracked := tracker.runs["run1"]
	tracker.mu.Unlock()
	if tracked {
		t.Fatal("forgotten run must not be re-tracked by a late expect")
	}
	if !tracker.wait(context.Background(), "run1", time.Second) {
		t.Fatal("forgotten run should report settled")
	}
}
