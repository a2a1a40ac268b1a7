package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fulfillment/api/middleware"
	"fulfillment/config"
	"fulfillment/infrastructure/gateway"
	"fulfillment/pkg/signature"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	jwtSecret       = "test-jwt-secret"
	shippingSecret  = "ship-hook-secret"
	paymentSecret   = "pay-hook-secret"
	gatewaySecret   = "gw-secret"
	gatewayKeyID    = "key_test"
	signatureHeader = "X-Signature"
)

type envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error"`
	Code       int             `json:"code"`
	Message    string          `json:"message"`
	RequestID  string          `json:"request_id"`
	Pagination struct {
		TotalItems int64 `json:"total_items"`
	} `json:"pagination"`
}

type testServer struct {
	engine  *gin.Engine
	gateway *gateway.Sandbox
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.App.Env = "test"
	cfg.Database.Type = "mock"
	cfg.Redis.Enabled = false
	cfg.Server.RateLimit.Enabled = false
	cfg.Auth.JWTSecret = jwtSecret
	cfg.Auth.Issuer = "storefront"
	cfg.Payment.BaseURL = ""
	cfg.Shipping.BaseURL = ""
	cfg.Payment.WebhookSecret = paymentSecret
	cfg.Shipping.WebhookSecret = shippingSecret
	cfg.Shipping.BookingTimeout = 5 * time.Second

	gw := gateway.NewSandbox(gatewayKeyID, gatewaySecret)
	app, err := NewBuilder(cfg).WithGateway(gw).Build()
	require.NoError(t, err)
	return &testServer{engine: app.Engine(), gateway: gw}
}

func token(t *testing.T, userID, role string) string {
	t.Helper()
	claims := middleware.Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    "storefront",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(jwtSecret))
	require.NoError(t, err)
	return signed
}

func (s *testServer) do(t *testing.T, method, path, bearer string, body []byte, headers map[string]string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func decode(t *testing.T, raw json.RawMessage, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, v), string(raw))
}

type checkoutData struct {
	Order struct {
		ID              string `json:"id"`
		ExternalOrderID string `json:"external_order_id"`
		Status          string `json:"status"`
	} `json:"order"`
	GatewayPublicKey string `json:"gateway_public_key"`
}

type orderData struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
}

type verifyData struct {
	Order    orderData `json:"order"`
	Shipping *struct {
		ExternalShipmentID string `json:"external_shipment_id"`
		AWBCode            string `json:"awb_code"`
		Status             string `json:"status"`
	} `json:"shipping"`
	ShipmentError string `json:"shipment_error"`
}

type refundData struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	user := token(t, "user-1", "customer")
	admin := token(t, "admin-1", "admin")

	// checkout, then replay with the same key
	body := mustJSON(t, map[string]string{"address_id": "addr-1", "idempotency_key": "web-1"})
	code, env := s.do(t, http.MethodPost, "/api/v1/checkout", user, body, nil)
	require.Equal(t, http.StatusCreated, code, env.Message)
	var co checkoutData
	decode(t, env.Data, &co)
	assert.Equal(t, "PENDING", co.Order.Status)
	assert.Equal(t, gatewayKeyID, co.GatewayPublicKey)
	assert.NotEmpty(t, env.RequestID)

	code, env = s.do(t, http.MethodPost, "/api/v1/checkout", user, body, nil)
	require.Equal(t, http.StatusOK, code)
	var replay checkoutData
	decode(t, env.Data, &replay)
	assert.Equal(t, co.Order.ID, replay.Order.ID)

	// verify payment and book the shipment
	verify := mustJSON(t, map[string]string{
		"order_id":            co.Order.ID,
		"external_payment_id": "pay_web_1",
		"external_order_id":   co.Order.ExternalOrderID,
		"signature":           s.gateway.Sign(co.Order.ExternalOrderID, "pay_web_1"),
	})
	code, env = s.do(t, http.MethodPost, "/api/v1/verify-payment", user, verify, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	var vd verifyData
	decode(t, env.Data, &vd)
	assert.Equal(t, "PAID", vd.Order.Status)
	require.NotNil(t, vd.Shipping, vd.ShipmentError)
	require.NotEmpty(t, vd.Shipping.ExternalShipmentID)

	// provider pushes an in-transit update
	push := mustJSON(t, map[string]string{
		"shipment_id":       vd.Shipping.ExternalShipmentID,
		"awb":               vd.Shipping.AWBCode,
		"current_status":    "In Transit",
		"current_timestamp": "2026-10-18 12:00:00",
	})
	code, _ = s.do(t, http.MethodPost, "/api/v1/webhooks/shipping-provider", "", push,
		map[string]string{signatureHeader: "deadbeef"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env = s.do(t, http.MethodPost, "/api/v1/webhooks/shipping-provider", "", push,
		map[string]string{signatureHeader: signature.Sign(shippingSecret, push)})
	require.Equal(t, http.StatusOK, code, env.Message)

	code, env = s.do(t, http.MethodGet, "/api/v1/orders/"+co.Order.ID, user, nil, nil)
	require.Equal(t, http.StatusOK, code)
	var od orderData
	decode(t, env.Data, &od)
	assert.Equal(t, "SHIPPED", od.Status)

	// shipped orders cannot be cancelled
	code, env = s.do(t, http.MethodPut, "/api/v1/orders/"+co.Order.ID+"/cancel", user, nil, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_STATE", env.Error)

	// refund: request, approve, poll
	code, env = s.do(t, http.MethodPost, "/api/v1/refunds/request", user,
		mustJSON(t, map[string]string{"order_id": co.Order.ID, "reason": "damaged"}), nil)
	require.Equal(t, http.StatusCreated, code, env.Message)
	var rd refundData
	decode(t, env.Data, &rd)
	assert.Equal(t, "REQUESTED", rd.Status)

	code, _ = s.do(t, http.MethodPost, "/api/v1/refunds/admin/"+rd.ID+"/approve", user, nil, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env = s.do(t, http.MethodPost, "/api/v1/refunds/admin/"+rd.ID+"/approve", admin, nil, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	decode(t, env.Data, &rd)
	assert.Equal(t, "PROCESSING", rd.Status)

	code, env = s.do(t, http.MethodGet, "/api/v1/refunds/admin/"+rd.ID+"/check-status", admin, nil, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	var status struct {
		Refund       refundData `json:"refund"`
		RemoteStatus string     `json:"remote_status"`
	}
	decode(t, env.Data, &status)
	assert.Equal(t, "COMPLETED", status.Refund.Status)

	code, env = s.do(t, http.MethodGet, "/api/v1/refunds/admin/all?status=COMPLETED", admin, nil, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Equal(t, int64(1), env.Pagination.TotalItems)
}

func TestAuthBoundary(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, http.MethodGet, "/api/v1/orders", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "UNAUTHORIZED", env.Error)

	code, _ = s.do(t, http.MethodGet, "/api/v1/orders", "not-a-token", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env = s.do(t, http.MethodPut, "/api/v1/admin/orders/any/status", token(t, "user-1", "customer"),
		mustJSON(t, map[string]string{"status": "SHIPPED"}), nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "FORBIDDEN", env.Error)

	code, env = s.do(t, http.MethodPut, "/api/v1/admin/orders/any/status", token(t, "admin-1", "admin"),
		mustJSON(t, map[string]string{"status": "LOST"}), nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error)
}

func TestCheckoutValidationErrors(t *testing.T) {
	s := newTestServer(t)
	user := token(t, "user-1", "customer")

	code, env := s.do(t, http.MethodPost, "/api/v1/checkout", user, []byte(`{}`), nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error)

	code, env = s.do(t, http.MethodPost, "/api/v1/checkout", user,
		mustJSON(t, map[string]string{"address_id": "addr-missing"}), nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error)

	// user-2 has no cart
	code, _ = s.do(t, http.MethodPost, "/api/v1/checkout", token(t, "user-2", "customer"),
		mustJSON(t, map[string]string{"address_id": "addr-1"}), nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestPaymentWebhookAcknowledgesUnknownEvents(t *testing.T) {
	s := newTestServer(t)

	body := []byte(`{"event":"subscription.paused","created_at":1792324800,"payload":{}}`)
	code, env := s.do(t, http.MethodPost, "/api/v1/webhooks/payment-provider", "", body,
		map[string]string{signatureHeader: signature.Sign(paymentSecret, body)})
	require.Equal(t, http.StatusOK, code, env.Message)

	var ack struct {
		Outcome string `json:"outcome"`
	}
	decode(t, env.Data, &ack)
	assert.Equal(t, "ignored", ack.Outcome)

	code, _ = s.do(t, http.MethodPost, "/api/v1/webhooks/payment-provider", "", body, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.do(t, http.MethodGet, "/api/v1/health/live", "", nil, nil)
	assert.Equal(t, http.StatusOK, code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}
