package mysql

import (
	"context"

	"fulfillment/domain/payment"
	"fulfillment/infrastructure/persistence/mysql/po"

	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Insert relies on the unique index over idempotency_key; a duplicate entry
// means another checkout with the same key got there first.
func (r *PaymentRepository) Insert(ctx context.Context, p *payment.Payment) error {
	paymentPO := po.FromPaymentDomain(p)
	paymentPO.Version = p.Version() + 1
	if err := getDB(ctx, r.db).Create(paymentPO).Error; err != nil {
		if isDuplicateKeyError(err) {
			return payment.NewDuplicateIdempotencyKeyError(p.IdempotencyKey())
		}
		return err
	}
	p.IncrementVersionForSave()
	return nil
}

func (r *PaymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	paymentPO := po.FromPaymentDomain(p)
	expectedVersion := p.Version()
	db := getDB(ctx, r.db)

	result := db.Model(&po.PaymentPO{}).
		Where("id = ? AND version = ?", p.ID(), expectedVersion).
		Updates(map[string]any{
			"external_payment_id": paymentPO.ExternalPaymentID,
			"signature":           paymentPO.Signature,
			"amount_refunded":     paymentPO.AmountRefunded,
			"status":              paymentPO.Status,
			"version":             expectedVersion + 1,
			"updated_at":          paymentPO.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := db.Model(&po.PaymentPO{}).Where("id = ?", p.ID()).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return payment.NewPaymentNotFoundError(p.ID())
		}
		return payment.NewConcurrentModificationError(p.ID())
	}
	p.IncrementVersionForSave()
	return nil
}

func (r *PaymentRepository) findOne(ctx context.Context, ref, query string, args ...any) (*payment.Payment, error) {
	var paymentPO po.PaymentPO
	if err := getDB(ctx, r.db).Where(query, args...).First(&paymentPO).Error; err != nil {
		if isNotFound(err) {
			return nil, payment.NewPaymentNotFoundError(ref)
		}
		return nil, err
	}
	return paymentPO.ToDomain(), nil
}

func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*payment.Payment, error) {
	return r.findOne(ctx, id, "id = ?", id)
}

func (r *PaymentRepository) FindByOrderID(ctx context.Context, orderID string) (*payment.Payment, error) {
	return r.findOne(ctx, "order "+orderID, "order_id = ?", orderID)
}

func (r *PaymentRepository) FindByIdempotencyKey(ctx context.Context, key string) (*payment.Payment, error) {
	return r.findOne(ctx, "key "+key, "idempotency_key = ?", key)
}

func (r *PaymentRepository) FindByExternalOrderID(ctx context.Context, externalOrderID string) (*payment.Payment, error) {
	return r.findOne(ctx, "external order "+externalOrderID, "external_order_id = ?", externalOrderID)
}

var _ payment.Repository = (*PaymentRepository)(nil)
