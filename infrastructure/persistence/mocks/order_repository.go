package mocks

import (
	"context"
	"sort"

	"fulfillment/domain/order"
)

type OrderRepository struct {
	store *Store
}

func NewOrderRepository(store *Store) *OrderRepository {
	return &OrderRepository{store: store}
}

func (r *OrderRepository) Save(ctx context.Context, o *order.Order) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	dto := o.ToDTO()
	stored, exists := s.orders[o.ID()]
	if o.IsNew() {
		if exists {
			return order.NewConcurrentModificationError(o.ID())
		}
	} else {
		if !exists {
			return order.NewOrderNotFoundError(o.ID())
		}
		if stored.Version != o.Version() {
			return order.NewConcurrentModificationError(o.ID())
		}
	}
	dto.Version = o.Version() + 1
	s.orders[o.ID()] = dto
	o.IncrementVersionForSave()
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*order.Order, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	dto, ok := r.store.orders[id]
	if !ok {
		return nil, order.NewOrderNotFoundError(id)
	}
	return order.RebuildFromDTO(dto), nil
}

func (r *OrderRepository) FindByUserID(ctx context.Context, userID string) ([]*order.Order, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var orders []*order.Order
	for _, dto := range r.store.orders {
		if dto.UserID == userID {
			orders = append(orders, order.RebuildFromDTO(dto))
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt().After(orders[j].CreatedAt())
	})
	return orders, nil
}

var _ order.Repository = (*OrderRepository)(nil)
