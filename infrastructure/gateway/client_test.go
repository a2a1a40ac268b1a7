package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"fulfillment/config"
	"fulfillment/domain/payment"
	"fulfillment/domain/shared"
	"fulfillment/pkg/signature"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(&config.PaymentConfig{
		BaseURL:   srv.URL,
		KeyID:     "key_test",
		KeySecret: "secret_test",
		Timeout:   time.Second,
		Breaker:   config.CircuitBreakerConfig{MaxFailures: 2, ResetTimeout: time.Minute},
	})
}

func TestCreateIntentSendsMinorUnits(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "key_test", user)
		assert.Equal(t, "secret_test", pass)

		var body createOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, int64(145000), body.Amount)
		assert.Equal(t, "INR", body.Currency)
		assert.Equal(t, "rcpt-1", body.Receipt)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"order_abc","status":"created"}`))
	})

	id, err := client.CreateIntent(context.Background(), 145000, "INR", map[string]string{"receipt": "rcpt-1"})
	require.NoError(t, err)
	assert.Equal(t, "order_abc", id)
	assert.Equal(t, "key_test", client.PublicKey())
}

func TestGatewayErrorClassification(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"server error is unavailable", http.StatusServiceUnavailable, `{}`, payment.ErrGatewayUnavailable},
		{"bad request is rejected", http.StatusBadRequest, `{"error":{"code":"BAD_REQUEST_ERROR","description":"insufficient balance"}}`, payment.ErrGatewayRejected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := client.IssueRefund(context.Background(), "pay_1", 1000, nil)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, shared.ErrUpstreamUnavailable)
		})
	}
}

func TestRejectedCarriesGatewayDescription(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"description":"insufficient balance"}}`))
	})
	_, err := client.IssueRefund(context.Background(), "pay_1", 1000, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient balance")
}

func TestBreakerOpensOnRepeatedOutages(t *testing.T) {
	var hits atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	for i := 0; i < 3; i++ {
		_, err := client.CreateIntent(context.Background(), 100, "INR", nil)
		assert.ErrorIs(t, err, payment.ErrGatewayUnavailable)
	}
	assert.Equal(t, int32(2), hits.Load())
}

func TestRefundStatusLowercased(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payments/pay_1/refunds/rfnd_1", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":"rfnd_1","status":"Processed"}`))
	})
	status, err := client.FetchRefundStatus(context.Background(), "pay_1", "rfnd_1")
	require.NoError(t, err)
	assert.Equal(t, payment.RemoteRefundProcessed, status)
}

func TestVerifySignature(t *testing.T) {
	client := NewClient(&config.PaymentConfig{KeyID: "k", KeySecret: "secret"})
	sig := signature.Sign("secret", signature.PaymentPayload("order_1", "pay_1"))

	assert.True(t, client.VerifySignature("order_1", "pay_1", sig))
	assert.False(t, client.VerifySignature("order_1", "pay_2", sig))
	assert.False(t, client.VerifySignature("order_1", "pay_1", ""))
}

func TestSandboxRefundLifecycle(t *testing.T) {
	sb := NewSandbox("", "")
	ctx := context.Background()

	assert.True(t, sb.VerifySignature("order_1", "pay_1", sb.Sign("order_1", "pay_1")))

	receipt, err := sb.IssueRefund(ctx, "pay_1", 500, nil)
	require.NoError(t, err)
	assert.Equal(t, payment.RemoteRefundPending, receipt.Status)

	status, err := sb.FetchRefundStatus(ctx, "pay_1", receipt.ExternalRefundID)
	require.NoError(t, err)
	assert.Equal(t, payment.RemoteRefundProcessed, status)
}
