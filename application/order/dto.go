package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// CheckoutRequest turns the caller's cart into an order.
type CheckoutRequest struct {
	AddressID      string `json:"address_id" binding:"required"`
	IdempotencyKey string `json:"idempotency_key"`
}

// CheckoutResponse is returned for a new checkout and for a replay alike.
type CheckoutResponse struct {
	Order            CheckoutOrder `json:"order"`
	GatewayPublicKey string        `json:"gateway_public_key"`
	IdempotencyKey   string        `json:"idempotency_key"`

	// Replayed is true when the idempotency key had already been used.
	Replayed bool `json:"-"`
}

type CheckoutOrder struct {
	ID              string          `json:"id"`
	ExternalOrderID string          `json:"external_order_id"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	ShippingCost    decimal.Decimal `json:"shipping_cost"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Currency        string          `json:"currency"`
	Status          string          `json:"status"`
}

// VerifyPaymentRequest carries the values the gateway handed to the client.
type VerifyPaymentRequest struct {
	OrderID           string `json:"order_id" binding:"required"`
	ExternalPaymentID string `json:"external_payment_id" binding:"required"`
	ExternalOrderID   string `json:"external_order_id" binding:"required"`
	Signature         string `json:"signature" binding:"required"`
}

type VerifyPaymentResponse struct {
	Order    *OrderResponse    `json:"order"`
	Shipping *ShippingResponse `json:"shipping,omitempty"`
	// ShipmentError explains why booking did not happen. Payment stays verified.
	ShipmentError string `json:"shipment_error,omitempty"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// UpdateOrderStatusRequest is the admin status override.
type UpdateOrderStatusRequest struct {
	Status     string `json:"status" binding:"required,oneof=PENDING PAID SHIPPED DELIVERED CANCELLED"`
	TrackingID string `json:"tracking_id"`
}

type OrderResponse struct {
	ID            string              `json:"id"`
	UserID        string              `json:"user_id"`
	Items         []OrderItemResponse `json:"items"`
	Subtotal      decimal.Decimal     `json:"subtotal"`
	ShippingCost  decimal.Decimal     `json:"shipping_cost"`
	TotalAmount   decimal.Decimal     `json:"total_amount"`
	Status        string              `json:"status"`
	Address       AddressResponse     `json:"address"`
	PaymentStatus string              `json:"payment_status,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

type OrderItemResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

type AddressResponse struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type ShippingResponse struct {
	Status             string                 `json:"status"`
	ExternalOrderID    string                 `json:"external_order_id"`
	ExternalShipmentID string                 `json:"external_shipment_id"`
	AWBCode            string                 `json:"awb_code,omitempty"`
	CourierName        string                 `json:"courier_name,omitempty"`
	TrackingURL        string                 `json:"tracking_url,omitempty"`
	ScheduledAt        *time.Time             `json:"scheduled_at,omitempty"`
	DispatchedAt       *time.Time             `json:"dispatched_at,omitempty"`
	DeliveredAt        *time.Time             `json:"delivered_at,omitempty"`
	History            []ShippingHistoryEntry `json:"history"`
}

type ShippingHistoryEntry struct {
	Status         string    `json:"status"`
	ProviderStatus string    `json:"provider_status,omitempty"`
	Location       string    `json:"location,omitempty"`
	Remark         string    `json:"remark,omitempty"`
	RecordedAt     time.Time `json:"recorded_at"`
}

// BookingResponse reports an admin re-book attempt.
type BookingResponse struct {
	Booked   bool              `json:"booked"`
	Shipping *ShippingResponse `json:"shipping,omitempty"`
	Error    string            `json:"error,omitempty"`
}

type TrackingResponse struct {
	OrderID     string            `json:"order_id"`
	OrderStatus string            `json:"order_status"`
	Shipping    *ShippingResponse `json:"shipping,omitempty"`
	Live        *LiveTracking     `json:"live,omitempty"`
	// LiveError is set when the provider could not be reached; local data is still returned.
	LiveError string `json:"live_error,omitempty"`
}

type LiveTracking struct {
	Status      string             `json:"status"`
	ETA         string             `json:"eta,omitempty"`
	TrackingURL string             `json:"tracking_url,omitempty"`
	Activities  []TrackingActivity `json:"activities"`
}

type TrackingActivity struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Location  string `json:"location,omitempty"`
	Remark    string `json:"remark,omitempty"`
}
