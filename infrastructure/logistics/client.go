// Package logistics adapts the logistics provider's REST API to the
// shipment.Provider port. The bearer token is cached in a TokenStore and
// renewed ahead of expiry, never in reaction to a 401.
package logistics

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"fulfillment/config"
	"fulfillment/domain/shipment"
	"fulfillment/infrastructure/cache"
	"fulfillment/pkg/circuitbreaker"
	"fulfillment/pkg/logger"
	"fulfillment/pkg/metrics"
	"fulfillment/pkg/tracing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
)

const (
	providerName = "logistics"
	tokenKey     = "logistics"
)

type Client struct {
	baseURL       string
	email         string
	password      string
	tokenTTL      time.Duration
	refreshBefore time.Duration
	httpClient    *http.Client
	breaker       *circuitbreaker.CircuitBreaker
	tokens        cache.TokenStore
	now           func() time.Time

	loginMu sync.Mutex
}

func NewClient(cfg *config.ShippingConfig, tokens cache.TokenStore) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 240 * time.Hour
	}
	if tokens == nil {
		tokens = cache.NewMemoryTokenStore()
	}
	return &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		email:         cfg.Email,
		password:      cfg.Password,
		tokenTTL:      ttl,
		refreshBefore: cfg.TokenRefreshBefore,
		httpClient:    &http.Client{Timeout: timeout},
		breaker:       newBreaker(cfg.Breaker),
		tokens:        tokens,
		now:           time.Now,
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

type statusError struct {
	code    int
	message string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("logistics provider responded %d: %s", e.code, e.message)
}

func isUnavailable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= http.StatusInternalServerError
	}
	return err != nil
}

func clientErrorMessage(err error) (string, bool) {
	var se *statusError
	if errors.As(err, &se) && se.code < http.StatusInternalServerError {
		return se.message, true
	}
	return "", false
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// token returns the cached token or logs in when it is missing or inside the
// refresh window.
func (c *Client) token(ctx context.Context) (string, error) {
	if t, ok, err := c.tokens.Get(ctx, tokenKey); err == nil && ok && t.Valid(c.now(), c.refreshBefore) {
		return t.Value, nil
	} else if err != nil {
		logger.Ctx(ctx).Warn("Token store read failed", zap.Error(err))
	}

	c.loginMu.Lock()
	defer c.loginMu.Unlock()

	// another caller may have logged in while we waited
	if t, ok, err := c.tokens.Get(ctx, tokenKey); err == nil && ok && t.Valid(c.now(), c.refreshBefore) {
		return t.Value, nil
	}

	var resp loginResponse
	err := c.send(ctx, http.MethodPost, "/v1/external/auth/login", "", loginRequest{Email: c.email, Password: c.password}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", errors.New("login returned no token")
	}
	t := cache.Token{Value: resp.Token, ExpiresAt: c.now().Add(c.tokenTTL)}
	if err := c.tokens.Set(ctx, tokenKey, t); err != nil {
		logger.Ctx(ctx).Warn("Token store write failed", zap.Error(err))
	}
	logger.Ctx(ctx).Info("Logistics provider token refreshed", zap.Time("expires_at", t.ExpiresAt))
	return t.Value, nil
}

// call authenticates and runs one request under the breaker with a span and
// latency metrics. The raw error is returned for the caller to classify.
func (c *Client) call(ctx context.Context, op, method, path string, body, out any) error {
	start := time.Now()
	ctx, span := tracing.Start(ctx, providerName+"."+op,
		attribute.String("http.method", method),
		attribute.String("provider.operation", op),
	)

	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		tok, err := c.token(ctx)
		if err != nil {
			return err
		}
		err = c.send(ctx, method, path, tok, body, out)
		var se *statusError
		if errors.As(err, &se) && se.code == http.StatusUnauthorized {
			_ = c.tokens.Delete(ctx, tokenKey)
		}
		return err
	})

	outcome := "success"
	if err != nil {
		outcome = "error"
		logger.Ctx(ctx).Warn("Logistics provider call failed", zap.String("operation", op), zap.Error(err))
	}
	metrics.ObserveProviderCall(providerName, op, outcome, time.Since(start).Seconds())
	tracing.End(span, err)
	return err
}

func (c *Client) send(ctx context.Context, method, path, token string, body, out any) error {
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
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
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
		var envelope struct {
			Message string `json:"message"`
		}
		message := http.StatusText(resp.StatusCode)
		if json.Unmarshal(respBody, &envelope) == nil && envelope.Message != "" {
			message = envelope.Message
		}
		return &statusError{code: resp.StatusCode, message: message}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode provider response: %w", err)
	}
	return nil
}

// flexID accepts ids the provider sends either as numbers or strings.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" {
		s = ""
	}
	*f = flexID(s)
	return nil
}

var _ shipment.Provider = (*Client)(nil)
