package mocks

import (
	"context"
	"sort"

	"fulfillment/domain/refund"
)

type RefundRepository struct {
	store *Store
}

func NewRefundRepository(store *Store) *RefundRepository {
	return &RefundRepository{store: store}
}

// Save mirrors the unique index over the active order id: one active refund per order.
func (r *RefundRepository) Save(ctx context.Context, rf *refund.Refund) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if rf.Status().IsActive() {
		for id, existing := range s.refunds {
			if id != rf.ID() && existing.OrderID == rf.OrderID() && existing.Status.IsActive() {
				return refund.NewActiveRefundExistsError(rf.OrderID())
			}
		}
	}

	stored, exists := s.refunds[rf.ID()]
	if rf.IsNew() {
		if exists {
			return refund.NewConcurrentModificationError(rf.ID())
		}
	} else {
		if !exists {
			return refund.NewRefundNotFoundError(rf.ID())
		}
		if stored.Version != rf.Version() {
			return refund.NewConcurrentModificationError(rf.ID())
		}
	}
	dto := rf.ToDTO()
	dto.Version = rf.Version() + 1
	s.refunds[rf.ID()] = dto
	rf.IncrementVersionForSave()
	return nil
}

func (r *RefundRepository) FindByID(ctx context.Context, id string) (*refund.Refund, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	dto, ok := r.store.refunds[id]
	if !ok {
		return nil, refund.NewRefundNotFoundError(id)
	}
	return refund.RebuildFromDTO(dto), nil
}

func (r *RefundRepository) FindActiveByOrderID(ctx context.Context, orderID string) (*refund.Refund, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, dto := range r.store.refunds {
		if dto.OrderID == orderID && dto.Status.IsActive() {
			return refund.RebuildFromDTO(dto), nil
		}
	}
	return nil, refund.NewRefundNotFoundError("active for order " + orderID)
}

func (r *RefundRepository) FindByExternalRefundID(ctx context.Context, externalRefundID string) (*refund.Refund, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, dto := range r.store.refunds {
		if externalRefundID != "" && dto.ExternalRefundID == externalRefundID {
			return refund.RebuildFromDTO(dto), nil
		}
	}
	return nil, refund.NewRefundNotFoundError("external " + externalRefundID)
}

func (r *RefundRepository) FindByUserID(ctx context.Context, userID string) ([]*refund.Refund, error) {
	return r.collect(func(d refund.ReconstructionDTO) bool { return d.UserID == userID }), nil
}

func (r *RefundRepository) List(ctx context.Context, filter refund.ListFilter) ([]*refund.Refund, int64, error) {
	all := r.collect(func(d refund.ReconstructionDTO) bool {
		return filter.Status == nil || d.Status == *filter.Status
	})
	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	total := int64(len(all))
	start := (page - 1) * limit
	if start >= len(all) {
		return []*refund.Refund{}, total, nil
	}
	end := min(start+limit, len(all))
	return all[start:end], total, nil
}

// collect returns matches newest first.
func (r *RefundRepository) collect(match func(refund.ReconstructionDTO) bool) []*refund.Refund {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []*refund.Refund
	for _, dto := range r.store.refunds {
		if match(dto) {
			out = append(out, refund.RebuildFromDTO(dto))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].RequestedAt().After(out[j].RequestedAt())
	})
	return out
}

var _ refund.Repository = (*RefundRepository)(nil)
