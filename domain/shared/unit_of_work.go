package shared

import "context"

// UnitOfWork manages the transaction boundary and collects aggregate events.
// Aggregates registered through ctx have their events written to the outbox
// in the same transaction.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(ctx context.Context) error) error
	RegisterNew(ctx context.Context, aggregate AggregateRoot)
	RegisterDirty(ctx context.Context, aggregate AggregateRoot)
}

type OutboxRepository interface {
	SaveEvent(ctx context.Context, event DomainEvent) error
}
