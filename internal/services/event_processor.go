package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/raiyan37/Centinel/internal/amqp"
)

// EventConsumer delivers ledger events to a handler until ctx is cancelled.
type EventConsumer interface {
	ConsumeLedgerEvents(ctx context.Context, handler func(context.Context, *amqp.LedgerEvent) error) error
}

// EventProcessor keeps the caches of one instance coherent with mutations
// committed by any other instance, by dropping the cached views of each
// account named in a consumed event.
type EventProcessor struct {
	consumer EventConsumer
	notifier *ChangeNotifier

	processed atomic.Int64

	// Lifecycle management
	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	doneCh  chan struct{}
	err     error
}

func NewEventProcessor(consumer EventConsumer, notifier *ChangeNotifier) *EventProcessor {
	return &EventProcessor{consumer: consumer, notifier: notifier}
}

// Start begins consuming in the background. Returns an error if already running.
func (p *EventProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("event processor is already running")
	}
	if p.consumer == nil {
		p.mu.Unlock()
		return fmt.Errorf("event processor has no consumer")
	}
	runCtx, cancel := context.WithCancel(ctx)
	p.running = true
	p.cancel = cancel
	p.doneCh = make(chan struct{})
	p.err = nil
	p.mu.Unlock()

	go p.run(runCtx)

	slog.InfoContext(ctx, "Event processor started")
	return nil
}

func (p *EventProcessor) run(ctx context.Context) {
	defer close(p.doneCh)

	err := p.consumer.ConsumeLedgerEvents(ctx, p.Handle)
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.ErrorContext(ctx, "Event consumer stopped", "error", err)
	}

	p.mu.Lock()
	p.running = false
	if !errors.Is(err, context.Canceled) {
		p.err = err
	}
	p.mu.Unlock()
}

// Stop cancels consumption and waits for the consumer to return.
func (p *EventProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	cancel, done := p.cancel, p.doneCh
	p.mu.Unlock()

	cancel()

	select {
	case <-done:
		slog.InfoContext(ctx, "Event processor stopped gracefully", "processed", p.Processed())
		return nil
	case <-ctx.Done():
		slog.WarnContext(ctx, "Event processor stop timed out")
		return ctx.Err()
	}
}

// Done is closed when the consumer returns. It is nil before Start.
func (p *EventProcessor) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doneCh
}

// Err returns why the consumer stopped, if not through Stop.
func (p *EventProcessor) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *EventProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Processed returns how many events were handled.
func (p *EventProcessor) Processed() int64 {
	return p.processed.Load()
}

// Handle invalidates the cached views of the event's account.
func (p *EventProcessor) Handle(ctx context.Context, event *amqp.LedgerEvent) error {
	if event == nil || event.AccountID == "" {
		return fmt.Errorf("ledger event without account")
	}
	if p.notifier != nil {
		p.notifier.Invalidate(ctx, event.AccountID)
	}
	p.processed.Add(1)

	slog.DebugContext(ctx, "Invalidated cached views",
		"event_type", event.Type, "account_id", event.AccountID, "entity_id", event.EntityID)
	return nil
}
