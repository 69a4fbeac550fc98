package events_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"reelcast/internal/events"
	"reelcast/internal/testsupport"
)

func TestEmitDeliversToAllSubscribers(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	router := events.NewRouter(cfg, nil)

	var (
		mu       sync.Mutex
		received []string
	)
	record := func(label string) events.Handler {
		return func(_ context.Context, evt events.Event) error {
			var payload events.VideoGenerate
			if err := evt.Decode(&payload); err != nil {
				t.Errorf("decode payload: %v", err)
				return err
			}
			mu.Lock()
			received = append(received, label+":"+payload.ScriptID)
			mu.Unlock()
			return nil
		}
	}

	if err := router.Subscribe(events.NameVideoGenerate, "worker-a", record("a")); err != nil {
		t.Fatalf("Subscribe a: %v", err)
	}
	if err := router.Subscribe(events.NameVideoGenerate, "worker-b", record("b")); err != nil {
		t.Fatalf("Subscribe b: %v", err)
	}

	err := router.Emit(context.Background(), events.NameVideoGenerate, events.VideoGenerate{ScriptID: "s1"})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	router.Close()

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 2 {
		t.Fatalf("expected 2 deliveries, got %v", received)
	}
}

func TestEmitWithoutSubscribersIsDropped(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	router := events.NewRouter(cfg, nil)
	defer router.Close()

	err := router.Emit(context.Background(), events.NamePublish, events.PublishRequest{VideoDBID: "v1"})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
}

func TestFailedDeliveryIsRetried(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Events.DeliveryRetries = 2
	cfg.Events.RedeliveryDelayMS = 1
	router := events.NewRouter(cfg, nil)

	var (
		mu    sync.Mutex
		calls int
	)
	err := router.Subscribe(events.NamePublish, "publisher", func(context.Context, events.Event) error {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls < 3 {
			return errors.New("upload rejected")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	if err := router.Emit(context.Background(), events.NamePublish, events.PublishRequest{VideoDBID: "v2"}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	router.Close()

	mu.Lock()
	defer mu.Unlock()
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestRedeliveryBudgetIsBounded(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Events.DeliveryRetries = 1
	cfg.Events.RedeliveryDelayMS = 1
	router := events.NewRouter(cfg, nil)

	var (
		mu    sync.Mutex
		calls int
	)
	err := router.Subscribe(events.NameVideoGenerate, "worker", func(context.Context, events.Event) error {
		mu.Lock()
		defer mu.Unlock()
		calls++
		return errors.New("always fails")
	})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	if err := router.Emit(context.Background(), events.NameVideoGenerate, events.VideoGenerate{ScriptID: "s2"}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	router.Close()

	mu.Lock()
	defer mu.Unlock()
	if calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls)
	}
}

func TestEmitAfterCloseFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	router := events.NewRouter(cfg, nil)
	router.Close()

	err := router.Emit(context.Background(), events.NamePipelineTest, events.PipelineTest{})
	if !errors.Is(err, events.ErrRouterClosed) {
		t.Fatalf("expected ErrRouterClosed, got %v", err)
	}
}

func TestEmitRacingCloseDoesNotPanic(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Events.BufferSize = 1
	router := events.NewRouter(cfg, nil)

	release := make(chan struct{})
	var (
		mu        sync.Mutex
		delivered int
	)
	err := router.Subscribe(events.NameVideoGenerate, "worker", func(context.Context, events.Event) error {
		<-release
		mu.Lock()
		delivered++
		mu.Unlock()
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	ctx := context.Background()
	// First emit is picked up by the delivery goroutine and parks on the
	// handler, second fills the buffer, third blocks on the queue send.
	for i := 0; i < 2; i++ {
		if err := router.Emit(ctx, events.NameVideoGenerate, events.VideoGenerate{ScriptID: "s"}); err != nil {
			t.Fatalf("Emit %d: %v", i, err)
		}
	}
	blocked := make(chan error, 1)
	go func() {
		blocked <- router.Emit(ctx, events.NameVideoGenerate, events.VideoGenerate{ScriptID: "s"})
	}()

	closed := make(chan struct{})
	go func() {
		time.Sleep(50 * time.Millisecond)
		router.Close()
		close(closed)
	}()

	select {
	case err := <-blocked:
		if !errors.Is(err, events.ErrRouterClosed) {
			t.Fatalf("expected ErrRouterClosed from blocked emit, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("emit still blocked after close")
	}

	close(release)
	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("close did not finish draining")
	}

	mu.Lock()
	defer mu.Unlock()
	if delivered != 2 {
		t.Fatalf("expected 2 drained deliveries, got %d", delivered)
	}
}

func TestSlowSubscriberDoesNotBlockOthers(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Events.BufferSize = 4
	router := events.NewRouter(cfg, nil)

	release := make(chan struct{})
	if err := router.Subscribe(events.NameVideoGenerate, "slow", func(context.Context, events.Event) error {
		<-release
		return nil
	}); err != nil {
		t.Fatalf("Subscribe slow: %v", err)
	}

	fastDone := make(chan struct{}, 4)
	if err := router.Subscribe(events.NameVideoGenerate, "fast", func(context.Context, events.Event) error {
		fastDone <- struct{}{}
		return nil
	}); err != nil {
		t.Fatalf("Subscribe fast: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := router.Emit(ctx, events.NameVideoGenerate, events.VideoGenerate{ScriptID: "s"}); err != nil {
			t.Fatalf("Emit %d: %v", i, err)
		}
	}

	for i := 0; i < 3; i++ {
		select {
		case <-fastDone:
		case <-time.After(2 * time.Second):
			t.Fatal("fast subscriber starved by slow subscriber")
		}
	}

	close(release)
	router.Close()
}
