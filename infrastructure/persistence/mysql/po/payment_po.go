package po

import (
	"time"

	"fulfillment/domain/payment"

	"github.com/shopspring/decimal"
)

// PaymentPO Payment persistence object.
// The unique index on idempotency_key is what arbitrates concurrent checkouts.
type PaymentPO struct {
	ID                string          `gorm:"primaryKey;size:64"`
	OrderID           string          `gorm:"size:64;uniqueIndex;not null"`
	ExternalOrderID   string          `gorm:"size:64;index;not null"`
	ExternalPaymentID string          `gorm:"size:64;index"`
	Signature         string          `gorm:"size:128"`
	IdempotencyKey    string          `gorm:"size:128;uniqueIndex;not null"`
	Amount            decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	AmountRefunded    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Currency          string          `gorm:"size:3;not null"`
	Status            string          `gorm:"size:20;not null"`
	Version           int             `gorm:"default:0"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (PaymentPO) TableName() string {
	return "payments"
}

func FromPaymentDomain(p *payment.Payment) *PaymentPO {
	dto := p.ToDTO()
	return &PaymentPO{
		ID:                dto.ID,
		OrderID:           dto.OrderID,
		ExternalOrderID:   dto.ExternalOrderID,
		ExternalPaymentID: dto.ExternalPaymentID,
		Signature:         dto.Signature,
		IdempotencyKey:    dto.IdempotencyKey,
		Amount:            dto.Amount,
		AmountRefunded:    dto.AmountRefunded,
		Currency:          dto.Currency,
		Status:            string(dto.Status),
		Version:           dto.Version,
		CreatedAt:         dto.CreatedAt,
		UpdatedAt:         dto.UpdatedAt,
	}
}

func (p *PaymentPO) ToDomain() *payment.Payment {
	return payment.RebuildFromDTO(payment.ReconstructionDTO{
		ID:                p.ID,
		OrderID:           p.OrderID,
		ExternalOrderID:   p.ExternalOrderID,
		ExternalPaymentID: p.ExternalPaymentID,
		Signature:         p.Signature,
		IdempotencyKey:    p.IdempotencyKey,
		Amount:            p.Amount,
		AmountRefunded:    p.AmountRefunded,
		Currency:          p.Currency,
		Status:            payment.Status(p.Status),
		Version:           p.Version,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	})
}
