package refund

import "context"

type ListFilter struct {
	Status *Status
	Page   int
	Limit  int
}

type Repository interface {
	// Save inserts or version-checked updates r. Inserting a second active
	// refund for the same order yields ErrActiveRefundExists.
	Save(ctx context.Context, r *Refund) error

	FindByID(ctx context.Context, id string) (*Refund, error)
	FindActiveByOrderID(ctx context.Context, orderID string) (*Refund, error)
	FindByUserID(ctx context.Context, userID string) ([]*Refund, error)
	FindByExternalRefundID(ctx context.Context, externalRefundID string) (*Refund, error)

	// List returns one page, newest first, and the total match count.
	List(ctx context.Context, filter ListFilter) ([]*Refund, int64, error)
}
