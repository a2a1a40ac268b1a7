package mysql

import (
	"context"
	"encoding/json"
	"fmt"

	"fulfillment/domain/shipment"
	"fulfillment/infrastructure/persistence/mysql/po"

	"gorm.io/gorm"
)

type ShippingDetailRepository struct {
	db *gorm.DB
}

func NewShippingDetailRepository(db *gorm.DB) *ShippingDetailRepository {
	return &ShippingDetailRepository{db: db}
}

func (r *ShippingDetailRepository) Save(ctx context.Context, d *shipment.ShippingDetail) error {
	detailPO := po.FromShippingDetailDomain(d)
	db := getDB(ctx, r.db)

	if d.IsNew() {
		detailPO.Version = d.Version() + 1
		if err := db.Create(detailPO).Error; err != nil {
			if isDuplicateKeyError(err) {
				return shipment.NewAlreadyBookedError(d.OrderID())
			}
			return err
		}
		d.IncrementVersionForSave()
		return nil
	}

	history, err := json.Marshal(detailPO.History)
	if err != nil {
		return fmt.Errorf("failed to encode shipment history: %w", err)
	}
	expectedVersion := d.Version()
	result := db.Model(&po.ShippingDetailPO{}).
		Where("id = ? AND version = ?", d.ID(), expectedVersion).
		Updates(map[string]any{
			"awb_code":      detailPO.AWBCode,
			"courier_name":  detailPO.CourierName,
			"status":        detailPO.Status,
			"history":       string(history),
			"dispatched_at": detailPO.DispatchedAt,
			"delivered_at":  detailPO.DeliveredAt,
			"version":       expectedVersion + 1,
			"updated_at":    detailPO.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shipment.NewConcurrentModificationError(d.ID())
	}
	d.IncrementVersionForSave()
	return nil
}

func (r *ShippingDetailRepository) FindByOrderID(ctx context.Context, orderID string) (*shipment.ShippingDetail, error) {
	var detailPO po.ShippingDetailPO
	if err := getDB(ctx, r.db).First(&detailPO, "order_id = ?", orderID).Error; err != nil {
		if isNotFound(err) {
			return nil, shipment.NewShippingDetailNotFoundError("order " + orderID)
		}
		return nil, err
	}
	return detailPO.ToDomain(), nil
}

func (r *ShippingDetailRepository) FindByExternalRef(ctx context.Context, shipmentID, awbCode string) (*shipment.ShippingDetail, error) {
	db := getDB(ctx, r.db)
	var detailPO po.ShippingDetailPO

	if shipmentID != "" {
		err := db.First(&detailPO, "external_shipment_id = ?", shipmentID).Error
		if err == nil {
			return detailPO.ToDomain(), nil
		}
		if !isNotFound(err) {
			return nil, err
		}
	}
	if awbCode != "" {
		err := db.First(&detailPO, "awb_code = ?", awbCode).Error
		if err == nil {
			return detailPO.ToDomain(), nil
		}
		if !isNotFound(err) {
			return nil, err
		}
	}
	return nil, shipment.NewShippingDetailNotFoundError("shipment " + shipmentID + " / awb " + awbCode)
}

var _ shipment.Repository = (*ShippingDetailRepository)(nil)
