package mysql

import (
	"context"

	"fulfillment/domain/refund"
	"fulfillment/infrastructure/persistence/mysql/po"

	"gorm.io/gorm"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type RefundRepository struct {
	db *gorm.DB
}

func NewRefundRepository(db *gorm.DB) *RefundRepository {
	return &RefundRepository{db: db}
}

// Save maps a duplicate active_order_id onto ErrActiveRefundExists: the
// unique index, not a prior read, decides which concurrent request wins.
func (r *RefundRepository) Save(ctx context.Context, rf *refund.Refund) error {
	refundPO := po.FromRefundDomain(rf)
	db := getDB(ctx, r.db)

	if rf.IsNew() {
		refundPO.Version = rf.Version() + 1
		if err := db.Create(refundPO).Error; err != nil {
			if isDuplicateKeyError(err) {
				return refund.NewActiveRefundExistsError(rf.OrderID())
			}
			return err
		}
		rf.IncrementVersionForSave()
		return nil
	}

	expectedVersion := rf.Version()
	result := db.Model(&po.RefundPO{}).
		Where("id = ? AND version = ?", rf.ID(), expectedVersion).
		Updates(map[string]any{
			"active_order_id":    refundPO.ActiveOrderID,
			"external_refund_id": refundPO.ExternalRefundID,
			"admin_note":         refundPO.AdminNote,
			"decided_by":         refundPO.DecidedBy,
			"status":             refundPO.Status,
			"decided_at":         refundPO.DecidedAt,
			"processed_at":       refundPO.ProcessedAt,
			"completed_at":       refundPO.CompletedAt,
			"version":            expectedVersion + 1,
			"updated_at":         refundPO.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return refund.NewConcurrentModificationError(rf.ID())
	}
	rf.IncrementVersionForSave()
	return nil
}

func (r *RefundRepository) findOne(ctx context.Context, ref, query string, args ...any) (*refund.Refund, error) {
	var refundPO po.RefundPO
	if err := getDB(ctx, r.db).Where(query, args...).First(&refundPO).Error; err != nil {
		if isNotFound(err) {
			return nil, refund.NewRefundNotFoundError(ref)
		}
		return nil, err
	}
	return refundPO.ToDomain(), nil
}

func (r *RefundRepository) FindByID(ctx context.Context, id string) (*refund.Refund, error) {
	return r.findOne(ctx, id, "id = ?", id)
}

func (r *RefundRepository) FindActiveByOrderID(ctx context.Context, orderID string) (*refund.Refund, error) {
	return r.findOne(ctx, "active for order "+orderID, "active_order_id = ?", orderID)
}

func (r *RefundRepository) FindByExternalRefundID(ctx context.Context, externalRefundID string) (*refund.Refund, error) {
	return r.findOne(ctx, externalRefundID, "external_refund_id = ?", externalRefundID)
}

func (r *RefundRepository) FindByUserID(ctx context.Context, userID string) ([]*refund.Refund, error) {
	var refundPOs []po.RefundPO
	if err := getDB(ctx, r.db).Where("user_id = ?", userID).
		Order("requested_at DESC").
		Find(&refundPOs).Error; err != nil {
		return nil, err
	}
	return toRefunds(refundPOs), nil
}

func (r *RefundRepository) List(ctx context.Context, filter refund.ListFilter) ([]*refund.Refund, int64, error) {
	page, limit := normalizePage(filter.Page, filter.Limit)
	q := getDB(ctx, r.db).Model(&po.RefundPO{})
	if filter.Status != nil {
		q = q.Where("status = ?", string(*filter.Status))
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var refundPOs []po.RefundPO
	if err := q.Order("requested_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&refundPOs).Error; err != nil {
		return nil, 0, err
	}
	return toRefunds(refundPOs), total, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func toRefunds(pos []po.RefundPO) []*refund.Refund {
	out := make([]*refund.Refund, len(pos))
	for i := range pos {
		out[i] = pos[i].ToDomain()
	}
	return out
}

var _ refund.Repository = (*RefundRepository)(nil)
