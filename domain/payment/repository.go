package payment

import "context"

type Repository interface {
	// Insert stores a new payment. A taken idempotency key yields ErrDuplicateIdempotencyKey.
	Insert(ctx context.Context, p *Payment) error

	// Update writes p guarded by its version.
	Update(ctx context.Context, p *Payment) error

	FindByID(ctx context.Context, id string) (*Payment, error)
	FindByOrderID(ctx context.Context, orderID string) (*Payment, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*Payment, error)
	FindByExternalOrderID(ctx context.Context, externalOrderID string) (*Payment, error)
}
