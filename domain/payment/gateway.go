package payment

import "context"

// Remote refund states reported by the gateway.
const (
	RemoteRefundPending   = "pending"
	RemoteRefundProcessed = "processed"
	RemoteRefundFailed    = "failed"
)

// RefundReceipt is what the gateway returns when it accepts a refund.
type RefundReceipt struct {
	ExternalRefundID string
	Status           string
}

// Gateway is the port to the remote payment processor. Amounts are integer
// minor units; the rest of the system works in decimal major units.
type Gateway interface {
	// CreateIntent opens a remote order and returns its id. Transport or 5xx
	// failures return ErrGatewayUnavailable and no partial success is implied.
	CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (string, error)

	// VerifySignature is a local HMAC check over "externalOrderID|externalPaymentID".
	VerifySignature(externalOrderID, externalPaymentID, signature string) bool

	IssueRefund(ctx context.Context, externalPaymentID string, amountMinor int64, notes map[string]string) (RefundReceipt, error)

	FetchRefundStatus(ctx context.Context, externalPaymentID, externalRefundID string) (string, error)

	// PublicKey is handed to the client to complete payment out of band.
	PublicKey() string
}
