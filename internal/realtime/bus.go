package realtime

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/subops/console-realtime/internal/core/domain"
)

// Handler receives one decoded message. Handlers run synchronously on the
// dispatching goroutine; a handler that blocks stalls delivery for everyone.
type Handler func(ctx context.Context, msg domain.Message)

type subscription struct {
	id      uuid.UUID
	handler Handler
}

// Bus is the fan-out point between the transport and its consumers. Every
// published message goes to every handler registered at the moment dispatch
// starts, in registration order. Publishes are serialized: delivery of
// message N completes before message N+1 begins.
type Bus struct {
	mu   sync.Mutex
	subs []*subscription

	// dispatchMu serializes Publish calls without holding mu during
	// handler invocation, so handlers can subscribe/unsubscribe mid-dispatch.
	dispatchMu sync.Mutex

	logger *slog.Logger
}

func NewBus(logger *slog.Logger) *Bus {
	return &Bus{logger: logger.With("component", "bus")}
}

// Subscribe registers a handler and returns its unsubscribe function.
// Every call yields an independent subscription, even for the same handler.
// The returned function is safe to call more than once.
func (b *Bus) Subscribe(h Handler) (unsubscribe func()) {
	sub := &subscription{id: uuid.New(), handler: h}

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	total := len(b.subs)
	b.mu.Unlock()

	b.logger.Debug("handler subscribed", "subscription_id", sub.id, "total", total)

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(sub) })
	}
}

func (b *Bus) remove(sub *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			b.logger.Debug("handler unsubscribed", "subscription_id", sub.id, "total", len(b.subs))
			return
		}
	}
}

// Publish delivers msg to a snapshot of the current subscribers. A handler
// that panics is isolated: the panic is logged and delivery continues with
// the remaining handlers. Registry mutations from within a handler take
// effect at the next message boundary.
func (b *Bus) Publish(ctx context.Context, msg domain.Message) {
	b.dispatchMu.Lock()
	defer b.dispatchMu.Unlock()

	b.mu.Lock()
	snapshot := make([]*subscription, len(b.subs))
	copy(snapshot, b.subs)
	b.mu.Unlock()

	for _, sub := range snapshot {
		b.deliver(ctx, sub, msg)
	}
}

func (b *Bus) deliver(ctx context.Context, sub *subscription, msg domain.Message) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("handler panicked",
				"subscription_id", sub.id,
				"event_type", msg.Type,
				"panic", r,
			)
		}
	}()

	sub.handler(ctx, msg)
}

// Len returns the number of registered subscriptions.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
