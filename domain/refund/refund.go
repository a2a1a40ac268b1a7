/*
Package refund is the refund workflow aggregate.

	REQUESTED -> APPROVED -> PROCESSING -> COMPLETED | FAILED
	REQUESTED -> REJECTED

An order has at most one refund in a non-terminal state at a time.
*/
package refund

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
	StatusRequested            Status = "REQUESTED"
	StatusPendingAdminApproval Status = "PENDING_ADMIN_APPROVAL"
	StatusApproved             Status = "APPROVED"
	StatusRejected             Status = "REJECTED"
	StatusProcessing           Status = "PROCESSING"
	StatusCompleted            Status = "COMPLETED"
	StatusFailed               Status = "FAILED"
)

// IsActive reports a non-terminal status.
func (s Status) IsActive() bool {
	switch s {
	case StatusRequested, StatusPendingAdminApproval, StatusApproved, StatusProcessing:
		return true
	}
	return false
}

func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case StatusRequested, StatusPendingAdminApproval, StatusApproved, StatusRejected,
		StatusProcessing, StatusCompleted, StatusFailed:
		return st, true
	}
	return "", false
}

type Refund struct {
	id               string
	orderID          string
	paymentID        string
	userID           string
	externalRefundID string
	amount           decimal.Decimal
	reason           string
	userNote         string
	adminNote        string
	decidedBy        string
	status           Status
	requestedAt      time.Time
	decidedAt        *time.Time
	processedAt      *time.Time
	completedAt      *time.Time
	version          int
	updatedAt        time.Time

	shared.EventRecorder
	isNew bool
}

type RequestParams struct {
	OrderID   string
	PaymentID string
	UserID    string
	Amount    decimal.Decimal
	Reason    string
	UserNote  string
}

// NewRefund opens a REQUESTED refund for the full refundable amount.
func NewRefund(p RequestParams) (*Refund, error) {
	if strings.TrimSpace(p.Reason) == "" {
		return nil, shared.NewValidationError("refund", "reason", "reason is required")
	}
	if !p.Amount.IsPositive() {
		return nil, NewAlreadyRefundedError(p.OrderID)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate refund ID: %w", err)
	}
	now := time.Now()
	r := &Refund{
		id:          id.String(),
		orderID:     p.OrderID,
		paymentID:   p.PaymentID,
		userID:      p.UserID,
		amount:      shared.RoundMoney(p.Amount),
		reason:      strings.TrimSpace(p.Reason),
		userNote:    p.UserNote,
		status:      StatusRequested,
		requestedAt: now,
		updatedAt:   now,
		isNew:       true,
	}
	r.Record(newEvent("refund.requested", r))
	return r, nil
}

// Approve records the admin decision. The gateway call happens afterwards.
func (r *Refund) Approve(adminID, note string) error {
	if r.status != StatusRequested && r.status != StatusPendingAdminApproval {
		return NewInvalidTransitionError(r.status, StatusApproved)
	}
	now := time.Now()
	r.decidedBy = adminID
	r.decidedAt = &now
	if note != "" {
		r.adminNote = note
	}
	r.setStatus(StatusApproved, now)
	r.Record(newEvent("refund.approved", r))
	return nil
}

// MarkProcessing stores the gateway refund id once the gateway accepted the refund.
func (r *Refund) MarkProcessing(externalRefundID string) error {
	switch r.status {
	case StatusProcessing:
		if r.externalRefundID == "" {
			r.externalRefundID = externalRefundID
		}
		return nil
	case StatusApproved:
	default:
		return NewInvalidTransitionError(r.status, StatusProcessing)
	}
	now := time.Now()
	if externalRefundID != "" {
		r.externalRefundID = externalRefundID
	}
	r.processedAt = &now
	r.setStatus(StatusProcessing, now)
	return nil
}

// MarkFailed records a gateway failure in the admin note.
func (r *Refund) MarkFailed(reason string) error {
	if r.status != StatusApproved && r.status != StatusProcessing {
		return NewInvalidTransitionError(r.status, StatusFailed)
	}
	r.adminNote = strings.TrimSpace(strings.TrimSpace(r.adminNote) + "\n" + "gateway error: " + reason)
	r.setStatus(StatusFailed, time.Now())
	r.Record(newEvent("refund.failed", r))
	return nil
}

// Reject requires a non-empty admin note.
func (r *Refund) Reject(adminID, note string) error {
	if strings.TrimSpace(note) == "" {
		return NewAdminNoteRequiredError()
	}
	if r.status != StatusRequested && r.status != StatusPendingAdminApproval {
		return NewInvalidTransitionError(r.status, StatusRejected)
	}
	now := time.Now()
	r.decidedBy = adminID
	r.decidedAt = &now
	r.adminNote = strings.TrimSpace(note)
	r.setStatus(StatusRejected, now)
	r.Record(newEvent("refund.rejected", r))
	return nil
}

// Complete marks the refund settled. Completing twice is a no-op reporting false.
func (r *Refund) Complete(at time.Time) (bool, error) {
	if r.status == StatusCompleted {
		return false, nil
	}
	if r.status != StatusProcessing {
		return false, NewInvalidTransitionError(r.status, StatusCompleted)
	}
	if at.IsZero() {
		at = time.Now()
	}
	r.completedAt = &at
	r.setStatus(StatusCompleted, time.Now())
	r.Record(newEvent("refund.completed", r))
	return true, nil
}

func (r *Refund) setStatus(s Status, now time.Time) {
	r.status = s
	r.updatedAt = now
}

func (r *Refund) IncrementVersionForSave() {
	r.version++
	r.isNew = false
}

func (r *Refund) ID() string               { return r.id }
func (r *Refund) OrderID() string          { return r.orderID }
func (r *Refund) PaymentID() string        { return r.paymentID }
func (r *Refund) UserID() string           { return r.userID }
func (r *Refund) ExternalRefundID() string { return r.externalRefundID }
func (r *Refund) Amount() decimal.Decimal  { return r.amount }
func (r *Refund) Reason() string           { return r.reason }
func (r *Refund) UserNote() string         { return r.userNote }
func (r *Refund) AdminNote() string        { return r.adminNote }
func (r *Refund) DecidedBy() string        { return r.decidedBy }
func (r *Refund) Status() Status           { return r.status }
func (r *Refund) RequestedAt() time.Time   { return r.requestedAt }
func (r *Refund) DecidedAt() *time.Time    { return r.decidedAt }
func (r *Refund) ProcessedAt() *time.Time  { return r.processedAt }
func (r *Refund) CompletedAt() *time.Time  { return r.completedAt }
func (r *Refund) Version() int             { return r.version }
func (r *Refund) UpdatedAt() time.Time     { return r.updatedAt }
func (r *Refund) IsNew() bool              { return r.isNew }

type ReconstructionDTO struct {
	ID               string
	OrderID          string
	PaymentID        string
	UserID           string
	ExternalRefundID string
	Amount           decimal.Decimal
	Reason           string
	UserNote         string
	AdminNote        string
	DecidedBy        string
	Status           Status
	RequestedAt      time.Time
	DecidedAt        *time.Time
	ProcessedAt      *time.Time
	CompletedAt      *time.Time
	Version          int
	UpdatedAt        time.Time
}

func RebuildFromDTO(dto ReconstructionDTO) *Refund {
	return &Refund{
		id:               dto.ID,
		orderID:          dto.OrderID,
		paymentID:        dto.PaymentID,
		userID:           dto.UserID,
		externalRefundID: dto.ExternalRefundID,
		amount:           dto.Amount,
		reason:           dto.Reason,
		userNote:         dto.UserNote,
		adminNote:        dto.AdminNote,
		decidedBy:        dto.DecidedBy,
		status:           dto.Status,
		requestedAt:      dto.RequestedAt,
		decidedAt:        dto.DecidedAt,
		processedAt:      dto.ProcessedAt,
		completedAt:      dto.CompletedAt,
		version:          dto.Version,
		updatedAt:        dto.UpdatedAt,
	}
}

func (r *Refund) ToDTO() ReconstructionDTO {
	return ReconstructionDTO{
		ID:               r.id,
		OrderID:          r.orderID,
		PaymentID:        r.paymentID,
		UserID:           r.userID,
		ExternalRefundID: r.externalRefundID,
		Amount:           r.amount,
		Reason:           r.reason,
		UserNote:         r.userNote,
		AdminNote:        r.adminNote,
		DecidedBy:        r.decidedBy,
		Status:           r.status,
		RequestedAt:      r.requestedAt,
		DecidedAt:        r.decidedAt,
		ProcessedAt:      r.processedAt,
		CompletedAt:      r.completedAt,
		Version:          r.version,
		UpdatedAt:        r.updatedAt,
	}
}

var _ shared.AggregateRoot = (*Refund)(nil)
