package order

import "context"

// Repository Order repository interface
type Repository interface {
	// Save inserts a new order (IsNew) or updates an existing one guarded by
	// its version. A stale version yields ErrConcurrentModification.
	Save(ctx context.Context, order *Order) error

	FindByID(ctx context.Context, id string) (*Order, error)

	// FindByUserID returns the user's orders, newest first.
	FindByUserID(ctx context.Context, userID string) ([]*Order, error)
}
