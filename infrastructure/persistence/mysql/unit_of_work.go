package mysql

import (
	"context"
	"fmt"

	"fulfillment/domain/shared"
	"fulfillment/infrastructure/persistence"
	"fulfillment/infrastructure/persistence/retry"
	"fulfillment/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UnitOfWork implements the Unit of Work pattern with GORM.
// It holds no per-request state: the transaction and the registered
// aggregates travel in the context, so one instance serves all requests.
type UnitOfWork struct {
	db               *gorm.DB
	outboxRepository *OutboxRepository
	retryConfig      retry.Config
}

func NewUnitOfWork(db *gorm.DB, retryConfig retry.Config) *UnitOfWork {
	return &UnitOfWork{
		db:               db,
		outboxRepository: NewOutboxRepository(db),
		retryConfig:      retryConfig,
	}
}

// Execute runs fn inside a database transaction:
//  1. begins a transaction and puts it into the context
//  2. runs fn
//  3. writes the events of registered aggregates to the outbox
//  4. commits, or rolls back on any error
//
// Retryable failures (stale version, deadlock, lock wait) re-run the whole
// attempt. A call nested in another Execute joins the outer transaction.
func (u *UnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if persistence.TxFromContext(ctx) != nil {
		return fn(ctx)
	}

	executeOnce := func(ctx context.Context) error {
		tx := u.db.WithContext(ctx).Begin()
		if tx.Error != nil {
			return fmt.Errorf("failed to begin transaction: %w", tx.Error)
		}

		txCtx := persistence.ContextWithTx(ctx, tx)
		txCtx, aggregates := persistence.ContextWithAggregates(txCtx)

		if err := fn(txCtx); err != nil {
			tx.Rollback()
			return err
		}

		for _, event := range aggregates.PullEvents() {
			if err := u.outboxRepository.SaveEvent(txCtx, event); err != nil {
				tx.Rollback()
				return err
			}
		}

		if err := tx.Commit().Error; err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil
	}

	return retry.ExecuteWithRetry(ctx, u.retryConfig, executeOnce)
}

func (u *UnitOfWork) RegisterNew(ctx context.Context, aggregate shared.AggregateRoot) {
	u.register(ctx, aggregate)
}

func (u *UnitOfWork) RegisterDirty(ctx context.Context, aggregate shared.AggregateRoot) {
	u.register(ctx, aggregate)
}

func (u *UnitOfWork) register(ctx context.Context, aggregate shared.AggregateRoot) {
	if !persistence.TrackAggregate(ctx, aggregate) {
		logger.Ctx(ctx).Warn("Aggregate registered outside a unit of work, events dropped",
			zap.String("aggregate_id", aggregate.ID()))
	}
}

var _ shared.UnitOfWork = (*UnitOfWork)(nil)
