package event

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/erp/crm/internal/domain/shared"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/erp/crm/internal/infrastructure/event"

// InMemoryEventBus dispatches events synchronously in the publishing goroutine.
// Handlers may publish further events from inside Handle.
type InMemoryEventBus struct {
	subs     *Subscriptions
	logger   *zap.Logger
	tracer   trace.Tracer
	stopped  atomic.Bool
	failures atomic.Int64
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryEventBus{
		subs:     NewSubscriptions(),
		logger:   logger,
		tracer:   otel.Tracer(tracerName),
	}
}

// Publish delivers events to every matching handler. A failing handler is
// logged and does not stop delivery to the others.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if b.stopped.Load() {
		b.logger.Warn("event bus stopped, dropping events", zap.Int("count", len(events)))
		return nil
	}
	for _, event := range events {
		for _, handler := range b.subs.Matching(event.EventType()) {
			if err := b.dispatch(ctx, handler, event); err != nil {
				b.failures.Add(1)
				b.logger.Error("handler failed to process event",
					zap.String("event_type", event.EventType()),
					zap.String("event_id", event.EventID().String()),
					zap.String("aggregate_id", event.AggregateID().String()),
					zap.String("handler", fmt.Sprintf("%T", handler)),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

// Subscribe registers a handler, falling back to the handler's own event types
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.subs.Add(handler, eventTypes...)
	b.logger.Debug("handler subscribed",
		zap.String("handler", fmt.Sprintf("%T", handler)),
		zap.Strings("event_types", eventTypes),
	)
}

// Unsubscribe removes a handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.subs.Remove(handler)
}

// Start starts the event bus
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.stopped.Store(false)
	b.logger.Info("event bus started", zap.Int("handlers", b.subs.Len()))
	return nil
}

// Stop stops accepting events. Dispatch is synchronous so nothing is in flight
// once every Publish call has returned.
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.stopped.Store(true)
	b.logger.Info("event bus stopped", zap.Int64("handler_failures", b.failures.Load()))
	return nil
}

// Failures returns the number of handler errors and panics seen so far
func (b *InMemoryEventBus) Failures() int64 {
	return b.failures.Load()
}

func (b *InMemoryEventBus) dispatch(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	ctx, span := b.tracer.Start(ctx, "event.handle "+event.EventType(),
		trace.WithAttributes(
			attribute.String("event.type", event.EventType()),
			attribute.String("event.aggregate_type", event.AggregateType()),
			attribute.String("event.aggregate_id", event.AggregateID().String()),
			attribute.String("tenant.id", event.TenantID().String()),
		),
	)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	return handler.Handle(ctx, event)
}

// HandlerFunc adapts a function to shared.EventHandler
type HandlerFunc struct {
	Types []string
	Fn    func(ctx context.Context, event shared.DomainEvent) error
}

// Handle calls Fn
func (h *HandlerFunc) Handle(ctx context.Context, event shared.DomainEvent) error {
	return h.Fn(ctx, event)
}

// EventTypes returns Types
func (h *HandlerFunc) EventTypes() []string {
	return h.Types
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
