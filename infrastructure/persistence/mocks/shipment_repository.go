package mocks

import (
	"context"

	"fulfillment/domain/shipment"
)

type ShippingDetailRepository struct {
	store *Store
}

func NewShippingDetailRepository(store *Store) *ShippingDetailRepository {
	return &ShippingDetailRepository{store: store}
}

func (r *ShippingDetailRepository) Save(ctx context.Context, d *shipment.ShippingDetail) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.shipments[d.OrderID()]
	if d.IsNew() {
		if exists {
			return shipment.NewAlreadyBookedError(d.OrderID())
		}
	} else {
		if !exists {
			return shipment.NewShippingDetailNotFoundError(d.OrderID())
		}
		if stored.Version != d.Version() {
			return shipment.NewConcurrentModificationError(d.ID())
		}
	}
	dto := d.ToDTO()
	dto.Version = d.Version() + 1
	s.shipments[d.OrderID()] = dto
	d.IncrementVersionForSave()
	return nil
}

func (r *ShippingDetailRepository) FindByOrderID(ctx context.Context, orderID string) (*shipment.ShippingDetail, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	dto, ok := r.store.shipments[orderID]
	if !ok {
		return nil, shipment.NewShippingDetailNotFoundError("order " + orderID)
	}
	return shipment.RebuildFromDTO(dto), nil
}

func (r *ShippingDetailRepository) FindByExternalRef(ctx context.Context, shipmentID, awbCode string) (*shipment.ShippingDetail, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if shipmentID != "" {
		for _, dto := range r.store.shipments {
			if dto.ExternalShipmentID == shipmentID {
				return shipment.RebuildFromDTO(dto), nil
			}
		}
	}
	if awbCode != "" {
		for _, dto := range r.store.shipments {
			if dto.AWBCode == awbCode {
				return shipment.RebuildFromDTO(dto), nil
			}
		}
	}
	return nil, shipment.NewShippingDetailNotFoundError("shipment " + shipmentID + " awb " + awbCode)
}

var _ shipment.Repository = (*ShippingDetailRepository)(nil)
