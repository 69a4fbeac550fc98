package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"reelcast/internal/store"
	"reelcast/internal/testsupport"
)

func TestCreateRunStartsRunning(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	run, err := st.CreateRun(ctx)
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if run.Status != store.RunStatusRunning {
		t.Fatalf("expected running status, got %s", run.Status)
	}
	if run.ID == "" {
		t.Fatal("expected run id to be assigned")
	}
	if run.RunDate != time.Now().UTC().Format("2006-01-02") {
		t.Fatalf("unexpected run date %q", run.RunDate)
	}
	if run.CompletedAt != nil {
		t.Fatal("new run should not have completed_at")
	}
}

func TestAddRunCountersAccumulates(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	run := testsupport.NewRun(t, st)

	if err := st.AddRunCounters(ctx, run.ID, store.CounterDelta{Ideas: 3}); err != nil {
		t.Fatalf("AddRunCounters: %v", err)
	}
	if err := st.AddRunCounters(ctx, run.ID, store.CounterDelta{Scripts: 1}); err != nil {
		t.Fatalf("AddRunCounters: %v", err)
	}
	if err := st.AddRunCounters(ctx, run.ID, store.CounterDelta{Scripts: 1, Videos: 1}); err != nil {
		t.Fatalf("AddRunCounters: %v", err)
	}

	got, err := st.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.IdeasGenerated != 3 || got.ScriptsGenerated != 2 || got.VideosCreated != 1 {
		t.Fatalf("unexpected counters: %+v", got)
	}
}

func TestAddRunCountersConcurrent(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	run := testsupport.NewRun(t, st)

	const writers = 8
	const perWriter = 5

	var wg sync.WaitGroup
	errs := make(chan error, writers*perWriter)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				if err := st.AddRunCounters(ctx, run.ID, store.CounterDelta{Videos: 1}); err != nil {
					errs <- err
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("AddRunCounters: %v", err)
	}

	got, err := st.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.VideosCreated != writers*perWriter {
		t.Fatalf("expected %d videos_created, got %d", writers*perWriter, got.VideosCreated)
	}
}

func TestCountersFrozenAfterFinish(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	run := testsupport.NewRun(t, st)

	ok, err := st.FinishRun(ctx, run.ID, store.RunStatusCompleted)
	if err != nil {
		t.Fatalf("FinishRun: %v", err)
	}
	if !ok {
		t.Fatal("expected FinishRun to transition the run")
	}

	if err := st.AddRunCounters(ctx, run.ID, store.CounterDelta{Published: 5}); err != nil {
		t.Fatalf("AddRunCounters: %v", err)
	}
	if err := st.AppendRunError(ctx, run.ID, "late failure"); err != nil {
		t.Fatalf("AppendRunError: %v", err)
	}

	got, err := st.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.VideosPublished != 0 {
		t.Fatalf("terminal run counters mutated: %+v", got)
	}
	if len(got.Errors) != 0 {
		t.Fatalf("terminal run accepted error append: %v", got.Errors)
	}
}

func TestFinishRunIsOneShot(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	run := testsupport.NewRun(t, st)

	ok, err := st.FinishRun(ctx, run.ID, store.RunStatusFailed)
	if err != nil || !ok {
		t.Fatalf("first FinishRun: ok=%v err=%v", ok, err)
	}

	ok, err = st.FinishRun(ctx, run.ID, store.RunStatusCompleted)
	if err != nil {
		t.Fatalf("second FinishRun: %v", err)
	}
	if ok {
		t.Fatal("second FinishRun should not transition a terminal run")
	}

	got, err := st.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Status != store.RunStatusFailed {
		t.Fatalf("expected failed, got %s", got.Status)
	}
	if got.CompletedAt == nil {
		t.Fatal("expected completed_at to be set")
	}
}

func TestFinishRunRejectsNonTerminal(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	run := testsupport.NewRun(t, st)

	if _, err := st.FinishRun(context.Background(), run.ID, store.RunStatusRunning); err == nil {
		t.Fatal("expected error for non-terminal status")
	}
}

func TestForceRunStatusOverridesTerminal(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	run := testsupport.NewRun(t, st)

	if _, err := st.FinishRun(ctx, run.ID, store.RunStatusFailed); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}
	if err := st.ForceRunStatus(ctx, run.ID, store.RunStatusCompleted); err != nil {
		t.Fatalf("ForceRunStatus: %v", err)
	}

	got, err := st.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Status != store.RunStatusCompleted {
		t.Fatalf("expected completed, got %s", got.Status)
	}
}

func TestAppendRunErrorPreservesOrder(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	run := testsupport.NewRun(t, st)

	messages := []string{"script step failed", "tts step failed", "render step failed"}
	for _, msg := range messages {
		if err := st.AppendRunError(ctx, run.ID, msg); err != nil {
			t.Fatalf("AppendRunError(%q): %v", msg, err)
		}
	}

	got, err := st.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if len(got.Errors) != len(messages) {
		t.Fatalf("expected %d errors, got %d", len(messages), len(got.Errors))
	}
	for i, msg := range messages {
		if got.Errors[i] != msg {
			t.Fatalf("error %d: expected %q, got %q", i, msg, got.Errors[i])
		}
	}
}

func TestReapStuckRunsRespectsCutoff(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	stale := testsupport.NewRun(t, st)
	time.Sleep(10 * time.Millisecond)
	cutoff := time.Now().UTC()
	time.Sleep(10 * time.Millisecond)
	fresh := testsupport.NewRun(t, st)

	reaped, err := st.ReapStuckRuns(ctx, cutoff)
	if err != nil {
		t.Fatalf("ReapStuckRuns: %v", err)
	}
	if reaped != 1 {
		t.Fatalf("expected 1 reaped run, got %d", reaped)
	}

	gotStale, err := st.GetRun(ctx, stale.ID)
	if err != nil {
		t.Fatalf("GetRun stale: %v", err)
	}
	if gotStale.Status != store.RunStatusFailed {
		t.Fatalf("stale run status = %s", gotStale.Status)
	}
	if len(gotStale.Errors) != 1 || gotStale.Errors[0] != store.ReapedRunError {
		t.Fatalf("stale run errors = %v", gotStale.Errors)
	}

	gotFresh, err := st.GetRun(ctx, fresh.ID)
	if err != nil {
		t.Fatalf("GetRun fresh: %v", err)
	}
	if gotFresh.Status != store.RunStatusRunning {
		t.Fatalf("fresh run status = %s", gotFresh.Status)
	}
}

func TestReapStuckRunsSkipsTerminalRuns(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	run := testsupport.NewRun(t, st)
	if _, err := st.FinishRun(ctx, run.ID, store.RunStatusCompleted); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	reaped, err := st.ReapStuckRuns(ctx, time.Now().UTC().Add(time.Hour))
	if err != nil {
		t.Fatalf("ReapStuckRuns: %v", err)
	}
	if reaped != 0 {
		t.Fatalf("expected 0 reaped runs, got %d", reaped)
	}
}

func TestListRunsFiltersAndOrders(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	first := testsupport.NewRun(t, st)
	time.Sleep(5 * time.Millisecond)
	second := testsupport.NewRun(t, st)
	if _, err := st.FinishRun(ctx, second.ID, store.RunStatusCompleted); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	all, err := st.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(all))
	}
	if all[0].ID != second.ID {
		t.Fatalf("expected newest run first, got %s", all[0].ID)
	}

	running, err := st.ListRuns(ctx, 0, store.RunStatusRunning)
	if err != nil {
		t.Fatalf("ListRuns running: %v", err)
	}
	if len(running) != 1 || running[0].ID != first.ID {
		t.Fatalf("unexpected running filter result: %+v", running)
	}
}

func TestLatestRun(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	latest, err := st.LatestRun(ctx)
	if err != nil {
		t.Fatalf("LatestRun empty: %v", err)
	}
	if latest != nil {
		t.Fatalf("expected nil latest on empty store, got %+v", latest)
	}

	testsupport.NewRun(t, st)
	time.Sleep(5 * time.Millisecond)
	newest := testsupport.NewRun(t, st)

	latest, err = st.LatestRun(ctx)
	if err != nil {
		t.Fatalf("LatestRun: %v", err)
	}
	if latest == nil || latest.ID != newest.ID {
		t.Fatalf("expected latest run %s, got %+v", newest.ID, latest)
	}
}
