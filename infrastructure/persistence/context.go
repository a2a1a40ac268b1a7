package persistence

import (
	"context"
	"sync"

	"fulfillment/domain/shared"

	"gorm.io/gorm"
)

type (
	txKey         struct{}
	requestIDKey  struct{}
	aggregatesKey struct{}
)

// TxFromContext retrieves the GORM transaction from context
// Returns nil if no transaction is present
func TxFromContext(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return nil
}

// ContextWithTx returns a new context with the GORM transaction attached
func ContextWithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// Aggregates collects the aggregates touched during one unit-of-work attempt.
// It lives in the context rather than on the unit of work so a single unit of
// work can be shared by concurrent requests.
type Aggregates struct {
	mu    sync.Mutex
	items []shared.AggregateRoot
}

func (a *Aggregates) Add(agg shared.AggregateRoot) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, existing := range a.items {
		if existing == agg {
			return
		}
	}
	a.items = append(a.items, agg)
}

// PullEvents drains events from every tracked aggregate in registration order.
func (a *Aggregates) PullEvents() []shared.DomainEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	var events []shared.DomainEvent
	for _, agg := range a.items {
		events = append(events, agg.PullEvents()...)
	}
	return events
}

func ContextWithAggregates(ctx context.Context) (context.Context, *Aggregates) {
	aggs := &Aggregates{}
	return context.WithValue(ctx, aggregatesKey{}, aggs), aggs
}

// TrackAggregate registers agg with the unit of work bound to ctx.
// It reports false when ctx carries no unit of work.
func TrackAggregate(ctx context.Context, agg shared.AggregateRoot) bool {
	aggs, ok := ctx.Value(aggregatesKey{}).(*Aggregates)
	if !ok || agg == nil {
		return false
	}
	aggs.Add(agg)
	return true
}
