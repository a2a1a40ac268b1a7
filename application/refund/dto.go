package refund

import (
	"time"

	"github.com/shopspring/decimal"
)

type RequestRefundRequest struct {
	OrderID  string `json:"order_id" binding:"required"`
	Reason   string `json:"reason" binding:"required"`
	UserNote string `json:"user_note"`
}

type ApproveRefundRequest struct {
	AdminNote string `json:"admin_note"`
}

type RejectRefundRequest struct {
	AdminNote string `json:"admin_note" binding:"required"`
}

// ListRefundsRequest is bound from the admin query string.
type ListRefundsRequest struct {
	Status string `form:"status"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

type RefundResponse struct {
	ID               string          `json:"id"`
	OrderID          string          `json:"order_id"`
	PaymentID        string          `json:"payment_id"`
	UserID           string          `json:"user_id"`
	ExternalRefundID string          `json:"external_refund_id,omitempty"`
	Amount           decimal.Decimal `json:"amount"`
	Reason           string          `json:"reason"`
	UserNote         string          `json:"user_note,omitempty"`
	AdminNote        string          `json:"admin_note,omitempty"`
	Status           string          `json:"status"`
	DecidedBy        string          `json:"decided_by,omitempty"`
	RequestedAt      time.Time       `json:"requested_at"`
	DecidedAt        *time.Time      `json:"decided_at,omitempty"`
	ProcessedAt      *time.Time      `json:"processed_at,omitempty"`
	CompletedAt      *time.Time      `json:"completed_at,omitempty"`
}

type RefundListResponse struct {
	Items []*RefundResponse `json:"items"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// RefundStatusResponse is the result of polling the gateway.
type RefundStatusResponse struct {
	Refund       *RefundResponse `json:"refund"`
	RemoteStatus string          `json:"remote_status"`
}
