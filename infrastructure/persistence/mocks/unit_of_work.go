package mocks

import (
	"context"

	"fulfillment/domain/shared"
	"fulfillment/infrastructure/persistence"
	"fulfillment/infrastructure/persistence/retry"
)

type txMarkerKey struct{}

// UnitOfWork serializes units of work on the store and rolls the store back
// to its snapshot when fn fails.
type UnitOfWork struct {
	store       *Store
	outbox      *OutboxRecorder
	retryConfig retry.Config
}

func NewUnitOfWork(store *Store, outbox *OutboxRecorder, retryConfig retry.Config) *UnitOfWork {
	return &UnitOfWork{store: store, outbox: outbox, retryConfig: retryConfig}
}

func (u *UnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txMarkerKey{}) != nil {
		return fn(ctx)
	}

	executeOnce := func(ctx context.Context) error {
		u.store.txMu.Lock()
		defer u.store.txMu.Unlock()

		snap := u.store.snapshot()
		txCtx := context.WithValue(ctx, txMarkerKey{}, true)
		txCtx, aggregates := persistence.ContextWithAggregates(txCtx)

		if err := fn(txCtx); err != nil {
			u.store.restore(snap)
			return err
		}
		for _, event := range aggregates.PullEvents() {
			if err := u.outbox.SaveEvent(txCtx, event); err != nil {
				u.store.restore(snap)
				return err
			}
		}
		return nil
	}

	return retry.ExecuteWithRetry(ctx, u.retryConfig, executeOnce)
}

func (u *UnitOfWork) RegisterNew(ctx context.Context, aggregate shared.AggregateRoot) {
	persistence.TrackAggregate(ctx, aggregate)
}

func (u *UnitOfWork) RegisterDirty(ctx context.Context, aggregate shared.AggregateRoot) {
	persistence.TrackAggregate(ctx, aggregate)
}

var _ shared.UnitOfWork = (*UnitOfWork)(nil)
