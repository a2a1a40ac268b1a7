package mocks

import (
	"context"
	"sync"

	"fulfillment/domain/shared"
	"fulfillment/pkg/logger"

	"go.uber.org/zap"
)

// OutboxRecorder keeps committed events in memory and logs them.
type OutboxRecorder struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func NewOutboxRecorder() *OutboxRecorder {
	return &OutboxRecorder{}
}

func (o *OutboxRecorder) SaveEvent(ctx context.Context, event shared.DomainEvent) error {
	if err := shared.ValidateEvent(event); err != nil {
		return err
	}
	o.mu.Lock()
	o.events = append(o.events, event)
	o.mu.Unlock()

	logger.Ctx(ctx).Debug("Outbox event recorded",
		zap.String("event_type", event.EventName()),
		zap.String("aggregate_id", event.GetAggregateID()),
	)
	return nil
}

// EventNames lists recorded event names in commit order.
func (o *OutboxRecorder) EventNames() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	names := make([]string, len(o.events))
	for i, e := range o.events {
		names[i] = e.EventName()
	}
	return names
}

func (o *OutboxRecorder) Events() []shared.DomainEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]shared.DomainEvent(nil), o.events...)
}

var _ shared.OutboxRepository = (*OutboxRecorder)(nil)
