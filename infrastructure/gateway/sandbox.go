package gateway

import (
	"context"
	"sync"

	"fulfillment/domain/payment"
	"fulfillment/pkg/signature"

	"github.com/google/uuid"
)

const sandboxSecret = "sandbox_secret"

// Sandbox is a local gateway used when no base URL is configured. Refunds are
// accepted as pending and report processed on the next status poll.
type Sandbox struct {
	keyID     string
	keySecret string

	mu      sync.Mutex
	refunds map[string]string
}

func NewSandbox(keyID, keySecret string) *Sandbox {
	if keySecret == "" {
		keySecret = sandboxSecret
	}
	if keyID == "" {
		keyID = "key_sandbox"
	}
	return &Sandbox{keyID: keyID, keySecret: keySecret, refunds: make(map[string]string)}
}

func (s *Sandbox) CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (string, error) {
	if amountMinor <= 0 {
		return "", payment.NewGatewayRejectedError("create_order", "amount must be positive")
	}
	return "order_" + uuid.NewString(), nil
}

func (s *Sandbox) VerifySignature(externalOrderID, externalPaymentID, sig string) bool {
	return signature.Verify(s.keySecret, signature.PaymentPayload(externalOrderID, externalPaymentID), sig)
}

// Sign produces the signature a client would receive after paying.
func (s *Sandbox) Sign(externalOrderID, externalPaymentID string) string {
	return signature.Sign(s.keySecret, signature.PaymentPayload(externalOrderID, externalPaymentID))
}

func (s *Sandbox) IssueRefund(ctx context.Context, externalPaymentID string, amountMinor int64, notes map[string]string) (payment.RefundReceipt, error) {
	if amountMinor <= 0 {
		return payment.RefundReceipt{}, payment.NewGatewayRejectedError("issue_refund", "amount must be positive")
	}
	id := "rfnd_" + uuid.NewString()
	s.mu.Lock()
	s.refunds[id] = payment.RemoteRefundProcessed
	s.mu.Unlock()
	return payment.RefundReceipt{ExternalRefundID: id, Status: payment.RemoteRefundPending}, nil
}

func (s *Sandbox) FetchRefundStatus(ctx context.Context, externalPaymentID, externalRefundID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	status, ok := s.refunds[externalRefundID]
	if !ok {
		return "", payment.NewGatewayRejectedError("fetch_refund", "unknown refund "+externalRefundID)
	}
	return status, nil
}

func (s *Sandbox) PublicKey() string { return s.keyID }

var _ payment.Gateway = (*Sandbox)(nil)
