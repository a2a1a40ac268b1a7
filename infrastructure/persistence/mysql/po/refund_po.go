package po

import (
	"time"

	"fulfillment/domain/refund"

	"github.com/shopspring/decimal"
)

// RefundPO Refund persistence object.
// ActiveOrderID equals OrderID while the refund is non-terminal and NULL
// afterwards; its unique index allows one active refund per order.
type RefundPO struct {
	ID               string          `gorm:"primaryKey;size:64"`
	OrderID          string          `gorm:"size:64;index;not null"`
	ActiveOrderID    *string         `gorm:"size:64;uniqueIndex"`
	PaymentID        string          `gorm:"size:64;not null"`
	UserID           string          `gorm:"size:64;index;not null"`
	ExternalRefundID *string         `gorm:"size:64;uniqueIndex"`
	Amount           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Reason           string          `gorm:"size:500;not null"`
	UserNote         string          `gorm:"size:1000"`
	AdminNote        string          `gorm:"size:1000"`
	DecidedBy        string          `gorm:"size:64"`
	Status           string          `gorm:"size:32;not null;index"`
	RequestedAt      time.Time       `gorm:"index"`
	DecidedAt        *time.Time
	ProcessedAt      *time.Time
	CompletedAt      *time.Time
	Version          int `gorm:"default:0"`
	UpdatedAt        time.Time
}

func (RefundPO) TableName() string {
	return "refunds"
}

func FromRefundDomain(r *refund.Refund) *RefundPO {
	dto := r.ToDTO()
	p := &RefundPO{
		ID:          dto.ID,
		OrderID:     dto.OrderID,
		PaymentID:   dto.PaymentID,
		UserID:      dto.UserID,
		Amount:      dto.Amount,
		Reason:      dto.Reason,
		UserNote:    dto.UserNote,
		AdminNote:   dto.AdminNote,
		DecidedBy:   dto.DecidedBy,
		Status:      string(dto.Status),
		RequestedAt: dto.RequestedAt,
		DecidedAt:   dto.DecidedAt,
		ProcessedAt: dto.ProcessedAt,
		CompletedAt: dto.CompletedAt,
		Version:     dto.Version,
		UpdatedAt:   dto.UpdatedAt,
	}
	if dto.Status.IsActive() {
		orderID := dto.OrderID
		p.ActiveOrderID = &orderID
	}
	if dto.ExternalRefundID != "" {
		ext := dto.ExternalRefundID
		p.ExternalRefundID = &ext
	}
	return p
}

func (p *RefundPO) ToDomain() *refund.Refund {
	var ext string
	if p.ExternalRefundID != nil {
		ext = *p.ExternalRefundID
	}
	return refund.RebuildFromDTO(refund.ReconstructionDTO{
		ID:               p.ID,
		OrderID:          p.OrderID,
		PaymentID:        p.PaymentID,
		UserID:           p.UserID,
		ExternalRefundID: ext,
		Amount:           p.Amount,
		Reason:           p.Reason,
		UserNote:         p.UserNote,
		AdminNote:        p.AdminNote,
		DecidedBy:        p.DecidedBy,
		Status:           refund.Status(p.Status),
		RequestedAt:      p.RequestedAt,
		DecidedAt:        p.DecidedAt,
		ProcessedAt:      p.ProcessedAt,
		CompletedAt:      p.CompletedAt,
		Version:          p.Version,
		UpdatedAt:        p.UpdatedAt,
	})
}
