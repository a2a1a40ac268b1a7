package mocks

import (
	"context"

	"fulfillment/domain/payment"
)

type PaymentRepository struct {
	store *Store
}

func NewPaymentRepository(store *Store) *PaymentRepository {
	return &PaymentRepository{store: store}
}

// Insert enforces the same unique keys as the payments table.
func (r *PaymentRepository) Insert(ctx context.Context, p *payment.Payment) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.payments {
		if existing.IdempotencyKey == p.IdempotencyKey() || existing.OrderID == p.OrderID() {
			return payment.NewDuplicateIdempotencyKeyError(p.IdempotencyKey())
		}
	}
	dto := p.ToDTO()
	dto.Version = p.Version() + 1
	s.payments[p.ID()] = dto
	p.IncrementVersionForSave()
	return nil
}

func (r *PaymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.payments[p.ID()]
	if !ok {
		return payment.NewPaymentNotFoundError(p.ID())
	}
	if stored.Version != p.Version() {
		return payment.NewConcurrentModificationError(p.ID())
	}
	dto := p.ToDTO()
	dto.Version = p.Version() + 1
	s.payments[p.ID()] = dto
	p.IncrementVersionForSave()
	return nil
}

func (r *PaymentRepository) find(ref string, match func(payment.ReconstructionDTO) bool) (*payment.Payment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, dto := range r.store.payments {
		if match(dto) {
			return payment.RebuildFromDTO(dto), nil
		}
	}
	return nil, payment.NewPaymentNotFoundError(ref)
}

func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*payment.Payment, error) {
	return r.find(id, func(d payment.ReconstructionDTO) bool { return d.ID == id })
}

func (r *PaymentRepository) FindByOrderID(ctx context.Context, orderID string) (*payment.Payment, error) {
	return r.find("order "+orderID, func(d payment.ReconstructionDTO) bool { return d.OrderID == orderID })
}

func (r *PaymentRepository) FindByIdempotencyKey(ctx context.Context, key string) (*payment.Payment, error) {
	return r.find("key "+key, func(d payment.ReconstructionDTO) bool { return d.IdempotencyKey == key })
}

func (r *PaymentRepository) FindByExternalOrderID(ctx context.Context, externalOrderID string) (*payment.Payment, error) {
	return r.find("external order "+externalOrderID, func(d payment.ReconstructionDTO) bool {
		return d.ExternalOrderID == externalOrderID
	})
}

var _ payment.Repository = (*PaymentRepository)(nil)
