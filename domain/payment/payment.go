// Package payment models the single external payment intent owned by an order.
package payment

import (
	"fmt"
	"strings"
	"time"

	"fulfillment/domain/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending           Status = "PENDING"
	StatusSuccess           Status = "SUCCESS"
	StatusFailed            Status = "FAILED"
	StatusRefunded          Status = "REFUNDED"
	StatusPartiallyRefunded Status = "PARTIALLY_REFUNDED"
)

// Payment is the local record of a remote payment intent.
type Payment struct {
	id                string
	orderID           string
	externalOrderID   string
	externalPaymentID string
	signature         string
	idempotencyKey    string
	amount            decimal.Decimal
	amountRefunded    decimal.Decimal
	currency          string
	status            Status
	version           int
	createdAt         time.Time
	updatedAt         time.Time

	shared.EventRecorder
	isNew bool
}

// NewPayment creates a PENDING payment for an intent already opened at the gateway.
func NewPayment(orderID, externalOrderID, idempotencyKey string, amount decimal.Decimal, currency string) (*Payment, error) {
	if strings.TrimSpace(idempotencyKey) == "" {
		return nil, shared.NewValidationError("payment", "idempotency_key", "idempotency key is required")
	}
	if strings.TrimSpace(externalOrderID) == "" {
		return nil, shared.NewValidationError("payment", "external_order_id", "external order id is required")
	}
	if !amount.IsPositive() {
		return nil, shared.NewInvariantViolationError("payment", "payment amount must be positive")
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate payment ID: %w", err)
	}
	now := time.Now()
	return &Payment{
		id:              id.String(),
		orderID:         orderID,
		externalOrderID: externalOrderID,
		idempotencyKey:  idempotencyKey,
		amount:          shared.RoundMoney(amount),
		amountRefunded:  decimal.Zero,
		currency:        currency,
		status:          StatusPending,
		createdAt:       now,
		updatedAt:       now,
		isNew:           true,
	}, nil
}

// MarkSucceeded records the verified capture. Only a PENDING payment can succeed.
func (p *Payment) MarkSucceeded(externalPaymentID, signature string) error {
	if p.status != StatusPending {
		return NewInvalidStateError(p.status, StatusSuccess)
	}
	p.externalPaymentID = externalPaymentID
	p.signature = signature
	p.touch(StatusSuccess)
	return nil
}

// MarkFailed is terminal for this intent.
func (p *Payment) MarkFailed(externalPaymentID string) error {
	if p.status != StatusPending {
		return NewInvalidStateError(p.status, StatusFailed)
	}
	if externalPaymentID != "" {
		p.externalPaymentID = externalPaymentID
	}
	p.touch(StatusFailed)
	return nil
}

// IsRefundable reports whether captured funds may still be returned.
func (p *Payment) IsRefundable() bool {
	return (p.status == StatusSuccess || p.status == StatusPartiallyRefunded) && p.Refundable().IsPositive()
}

// Refundable is amount - amountRefunded.
func (p *Payment) Refundable() decimal.Decimal {
	return p.amount.Sub(p.amountRefunded)
}

// ApplyRefund books a refund the gateway has accepted.
func (p *Payment) ApplyRefund(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewInvariantViolationError("payment", "refund amount must be positive, got "+amount.String())
	}
	if p.status != StatusSuccess && p.status != StatusPartiallyRefunded {
		return NewInvalidStateError(p.status, StatusRefunded)
	}
	next := p.amountRefunded.Add(amount)
	if next.GreaterThan(p.amount) {
		return shared.NewInvariantViolationError("payment",
			fmt.Sprintf("refund of %s exceeds refundable amount %s", amount.StringFixed(2), p.Refundable().StringFixed(2)))
	}
	p.amountRefunded = next
	if next.Equal(p.amount) {
		p.touch(StatusRefunded)
	} else {
		p.touch(StatusPartiallyRefunded)
	}
	return nil
}

func (p *Payment) touch(s Status) {
	p.status = s
	p.updatedAt = time.Now()
}

func (p *Payment) IncrementVersionForSave() {
	p.version++
	p.isNew = false
}

func (p *Payment) ID() string                      { return p.id }
func (p *Payment) OrderID() string                 { return p.orderID }
func (p *Payment) ExternalOrderID() string         { return p.externalOrderID }
func (p *Payment) ExternalPaymentID() string       { return p.externalPaymentID }
func (p *Payment) Signature() string               { return p.signature }
func (p *Payment) IdempotencyKey() string          { return p.idempotencyKey }
func (p *Payment) Amount() decimal.Decimal         { return p.amount }
func (p *Payment) AmountRefunded() decimal.Decimal { return p.amountRefunded }
func (p *Payment) Currency() string                { return p.currency }
func (p *Payment) Status() Status                  { return p.status }
func (p *Payment) Version() int                    { return p.version }
func (p *Payment) CreatedAt() time.Time            { return p.createdAt }
func (p *Payment) UpdatedAt() time.Time            { return p.updatedAt }
func (p *Payment) IsNew() bool                     { return p.isNew }

// ReconstructionDTO rebuilds a Payment from storage.
type ReconstructionDTO struct {
	ID                string
	OrderID           string
	ExternalOrderID   string
	ExternalPaymentID string
	Signature         string
	IdempotencyKey    string
	Amount            decimal.Decimal
	AmountRefunded    decimal.Decimal
	Currency          string
	Status            Status
	Version           int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func RebuildFromDTO(dto ReconstructionDTO) *Payment {
	return &Payment{
		id:                dto.ID,
		orderID:           dto.OrderID,
		externalOrderID:   dto.ExternalOrderID,
		externalPaymentID: dto.ExternalPaymentID,
		signature:         dto.Signature,
		idempotencyKey:    dto.IdempotencyKey,
		amount:            dto.Amount,
		amountRefunded:    dto.AmountRefunded,
		currency:          dto.Currency,
		status:            dto.Status,
		version:           dto.Version,
		createdAt:         dto.CreatedAt,
		updatedAt:         dto.UpdatedAt,
	}
}

func (p *Payment) ToDTO() ReconstructionDTO {
	return ReconstructionDTO{
		ID:                p.id,
		OrderID:           p.orderID,
		ExternalOrderID:   p.externalOrderID,
		ExternalPaymentID: p.externalPaymentID,
		Signature:         p.signature,
		IdempotencyKey:    p.idempotencyKey,
		Amount:            p.amount,
		AmountRefunded:    p.amountRefunded,
		Currency:          p.currency,
		Status:            p.status,
		Version:           p.version,
		CreatedAt:         p.createdAt,
		UpdatedAt:         p.updatedAt,
	}
}

var _ shared.AggregateRoot = (*Payment)(nil)
