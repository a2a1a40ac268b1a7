package mysql

import (
	"context"

	"fulfillment/domain/order"
	"fulfillment/infrastructure/persistence/mysql/po"

	"gorm.io/gorm"
)

// OrderRepository MySQL/GORM implementation of order repository
// GORM associations are not used, to keep aggregate boundaries explicit.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Save inserts a new order with its items, or updates the mutable columns of
// an existing one guarded by version. Items and amounts are never rewritten.
func (r *OrderRepository) Save(ctx context.Context, o *order.Order) error {
	orderPO, itemPOs := po.FromOrderDomain(o)

	err := inTx(ctx, r.db, func(tx *gorm.DB) error {
		if o.IsNew() {
			orderPO.Version = o.Version() + 1
			if err := tx.Create(orderPO).Error; err != nil {
				return err
			}
			if len(itemPOs) > 0 {
				return tx.Create(&itemPOs).Error
			}
			return nil
		}

		expectedVersion := o.Version()
		result := tx.Model(&po.OrderPO{}).
			Where("id = ? AND version = ?", o.ID(), expectedVersion).
			Updates(map[string]any{
				"status":     orderPO.Status,
				"version":    expectedVersion + 1,
				"updated_at": orderPO.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&po.OrderPO{}).Where("id = ?", o.ID()).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return order.NewOrderNotFoundError(o.ID())
			}
			return order.NewConcurrentModificationError(o.ID())
		}
		return nil
	})
	if err != nil {
		return err
	}
	o.IncrementVersionForSave()
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*order.Order, error) {
	db := getDB(ctx, r.db)
	var orderPO po.OrderPO
	if err := db.First(&orderPO, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, order.NewOrderNotFoundError(id)
		}
		return nil, err
	}

	var itemPOs []po.OrderItemPO
	if err := db.Where("order_id = ?", id).Find(&itemPOs).Error; err != nil {
		return nil, err
	}
	return orderPO.ToDomain(itemPOs), nil
}

// FindByUserID loads the user's orders newest first, with items fetched in one query.
func (r *OrderRepository) FindByUserID(ctx context.Context, userID string) ([]*order.Order, error) {
	db := getDB(ctx, r.db)
	var orderPOs []po.OrderPO
	if err := db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orderPOs).Error; err != nil {
		return nil, err
	}
	if len(orderPOs) == 0 {
		return []*order.Order{}, nil
	}

	ids := make([]string, len(orderPOs))
	for i := range orderPOs {
		ids[i] = orderPOs[i].ID
	}
	var itemPOs []po.OrderItemPO
	if err := db.Where("order_id IN ?", ids).Find(&itemPOs).Error; err != nil {
		return nil, err
	}
	byOrder := make(map[string][]po.OrderItemPO, len(orderPOs))
	for _, it := range itemPOs {
		byOrder[it.OrderID] = append(byOrder[it.OrderID], it)
	}

	orders := make([]*order.Order, len(orderPOs))
	for i := range orderPOs {
		orders[i] = orderPOs[i].ToDomain(byOrder[orderPOs[i].ID])
	}
	return orders, nil
}

var _ order.Repository = (*OrderRepository)(nil)
