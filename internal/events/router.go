package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"reelcast/internal/config"
	"reelcast/internal/logging"
)

// ErrRouterClosed is returned by Emit after Close has been called.
var ErrRouterClosed = errors.New("event router closed")

// Handler processes one delivered event. A non-nil error triggers
// redelivery up to the configured retry budget.
type Handler func(ctx context.Context, evt Event) error

type subscriber struct {
	name    string
	handler Handler
	queue   chan Event
}

// Router fans events out to per-subscriber queues. Subscribers are
// registered before the first Emit; each runs its own delivery goroutine
// so a slow handler cannot stall the others.
type Router struct {
	logger  *slog.Logger
	buffer  int
	retries int
	redelay time.Duration

	mu     sync.Mutex
	subs   map[string][]*subscriber
	closed bool
	done   chan struct{}
	emits  sync.WaitGroup
	wg     sync.WaitGroup
}

// NewRouter builds a Router from the event tuning config.
func NewRouter(cfg *config.Config, logger *slog.Logger) *Router {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Router{
		logger:  logger.With(logging.String(logging.FieldComponent, "events")),
		buffer:  cfg.Events.BufferSize,
		retries: cfg.Events.DeliveryRetries,
		redelay: time.Duration(cfg.Events.RedeliveryDelayMS) * time.Millisecond,
		subs:    make(map[string][]*subscriber),
		done:    make(chan struct{}),
	}
}

// Subscribe registers a handler for an event name and starts its delivery
// goroutine. The subscriber label only appears in logs.
func (r *Router) Subscribe(name, label string, handler Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRouterClosed
	}

	buffer := r.buffer
	if buffer < 1 {
		buffer = 1
	}
	sub := &subscriber{
		name:    label,
		handler: handler,
		queue:   make(chan Event, buffer),
	}
	r.subs[name] = append(r.subs[name], sub)

	r.wg.Add(1)
	go r.deliverLoop(sub)
	return nil
}

// Emit routes an event to every subscriber of its name. The payload is
// JSON-encoded once and shared. Emit blocks while a subscriber queue is
// full, or returns early when ctx is done.
func (r *Router) Emit(ctx context.Context, name string, payload any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode event payload: %w", err)
	}

	evt := Event{
		ID:        uuid.NewString(),
		Name:      name,
		Payload:   encoded,
		EmittedAt: time.Now().UTC(),
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrRouterClosed
	}
	// Registered before unlocking so Close cannot close the queues while
	// this emit is still sending.
	r.emits.Add(1)
	targets := make([]*subscriber, len(r.subs[name]))
	copy(targets, r.subs[name])
	r.mu.Unlock()
	defer r.emits.Done()

	if len(targets) == 0 {
		r.logger.Warn("event has no subscribers",
			logging.String(logging.FieldEvent, name))
		return nil
	}

	for _, sub := range targets {
		select {
		case sub.queue <- evt:
		case <-ctx.Done():
			return ctx.Err()
		case <-r.done:
			return ErrRouterClosed
		}
	}
	return nil
}

// Close stops accepting events and waits for queued deliveries to finish.
func (r *Router) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.done)
	r.mu.Unlock()

	// Emits blocked on a full queue bail out via the done channel; once
	// they have all returned no sender remains and the queues can close.
	r.emits.Wait()
	for _, subs := range r.subs {
		for _, sub := range subs {
			close(sub.queue)
		}
	}

	r.wg.Wait()
}

func (r *Router) deliverLoop(sub *subscriber) {
	defer r.wg.Done()

	for evt := range sub.queue {
		r.deliver(sub, evt)
	}
}

func (r *Router) deliver(sub *subscriber, evt Event) {
	logger := r.logger.With(
		logging.String(logging.FieldEvent, evt.Name),
		logging.String("subscriber", sub.name),
		logging.String("event_id", evt.ID),
	)

	attempts := r.retries + 1
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		err := sub.handler(context.Background(), evt)
		if err == nil {
			return
		}
		if attempt == attempts {
			logger.Error("event delivery abandoned",
				logging.Int("attempts", attempts),
				logging.Error(err))
			return
		}
		logger.Warn("event delivery failed, redelivering",
			logging.Int("attempt", attempt),
			logging.Error(err))
		if r.redelay > 0 {
			time.Sleep(r.redelay)
		}
	}
}
