// Package gateway adapts the remote payment processor's REST API to the
// payment.Gateway port.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"fulfillment/config"
	"fulfillment/domain/payment"
	"fulfillment/pkg/circuitbreaker"
	"fulfillment/pkg/logger"
	"fulfillment/pkg/metrics"
	"fulfillment/pkg/signature"
	"fulfillment/pkg/tracing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
)

const providerName = "payment_gateway"

// Client talks to the gateway over HTTPS with basic auth (key id, key secret).
type Client struct {
	baseURL    string
	keyID      string
	keySecret  string
	httpClient *http.Client
	breaker    *circuitbreaker.CircuitBreaker
}

func NewClient(cfg *config.PaymentConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		keyID:      cfg.KeyID,
		keySecret:  cfg.KeySecret,
		httpClient: &http.Client{Timeout: timeout},
		breaker:    newBreaker(cfg.Breaker),
	}
}

func newBreaker(cfg config.CircuitBreakerConfig) *circuitbreaker.CircuitBreaker {
	cb := circuitbreaker.NewCircuitBreaker(providerName, cfg.MaxFailures, cfg.ResetTimeout)
	cb.IsFailure = isUnavailable
	cb.OnStateChange = func(name string, from, to circuitbreaker.State) {
		metrics.SetBreakerState(name, int(to))
		logger.Warn("Circuit breaker state changed",
			zap.String("breaker", name),
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
	}
	return cb
}

// statusError is a non-2xx answer from the gateway.
type statusError struct {
	code        int
	description string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("gateway responded %d: %s", e.code, e.description)
}

// isUnavailable reports transport failures and 5xx answers. 4xx answers are
// the gateway working correctly and do not trip the breaker.
func isUnavailable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= http.StatusInternalServerError
	}
	return err != nil
}

type createOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt,omitempty"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type orderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (c *Client) CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (string, error) {
	req := createOrderRequest{
		Amount:   amountMinor,
		Currency: currency,
		Receipt:  metadata["receipt"],
		Notes:    metadata,
	}
	var resp orderResponse
	if err := c.call(ctx, "create_order", http.MethodPost, "/v1/orders", req, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", payment.NewGatewayRejectedError("create_order", "gateway returned no order id")
	}
	return resp.ID, nil
}

func (c *Client) VerifySignature(externalOrderID, externalPaymentID, sig string) bool {
	return signature.Verify(c.keySecret, signature.PaymentPayload(externalOrderID, externalPaymentID), sig)
}

type refundRequest struct {
	Amount int64             `json:"amount"`
	Speed  string            `json:"speed"`
	Notes  map[string]string `json:"notes,omitempty"`
}

type refundResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (c *Client) IssueRefund(ctx context.Context, externalPaymentID string, amountMinor int64, notes map[string]string) (payment.RefundReceipt, error) {
	var resp refundResponse
	path := "/v1/payments/" + externalPaymentID + "/refund"
	err := c.call(ctx, "issue_refund", http.MethodPost, path, refundRequest{Amount: amountMinor, Speed: "normal", Notes: notes}, &resp)
	if err != nil {
		return payment.RefundReceipt{}, err
	}
	if resp.ID == "" {
		return payment.RefundReceipt{}, payment.NewGatewayRejectedError("issue_refund", "gateway returned no refund id")
	}
	return payment.RefundReceipt{ExternalRefundID: resp.ID, Status: strings.ToLower(resp.Status)}, nil
}

func (c *Client) FetchRefundStatus(ctx context.Context, externalPaymentID, externalRefundID string) (string, error) {
	var resp refundResponse
	path := "/v1/payments/" + externalPaymentID + "/refunds/" + externalRefundID
	if err := c.call(ctx, "fetch_refund", http.MethodGet, path, nil, &resp); err != nil {
		return "", err
	}
	return strings.ToLower(resp.Status), nil
}

func (c *Client) PublicKey() string { return c.keyID }

// call wraps one request with the breaker, a span and latency metrics, and
// maps failures onto the payment error kinds.
func (c *Client) call(ctx context.Context, op, method, path string, body, out any) error {
	start := time.Now()
	ctx, span := tracing.Start(ctx, providerName+"."+op,
		attribute.String("http.method", method),
		attribute.String("provider.operation", op),
	)

	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.roundTrip(ctx, method, path, body, out)
	})

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	metrics.ObserveProviderCall(providerName, op, outcome, time.Since(start).Seconds())
	tracing.End(span, err)

	if err == nil {
		return nil
	}
	logger.Ctx(ctx).Warn("Payment gateway call failed", zap.String("operation", op), zap.Error(err))

	var se *statusError
	if errors.As(err, &se) && se.code < http.StatusInternalServerError {
		return payment.NewGatewayRejectedError(op, se.description)
	}
	return payment.NewGatewayUnavailableError(op, err)
}

type errorEnvelope struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		var envelope errorEnvelope
		description := http.StatusText(resp.StatusCode)
		if json.Unmarshal(respBody, &envelope) == nil && envelope.Error.Description != "" {
			description = envelope.Error.Description
		}
		return &statusError{code: resp.StatusCode, description: description}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode gateway response: %w", err)
	}
	return nil
}

var _ payment.Gateway = (*Client)(nil)
