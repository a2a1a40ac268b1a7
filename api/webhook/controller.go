// Package webhook receives provider push notifications. The routes carry no
// session auth; each payload is authenticated by its HMAC signature header.
package webhook

import (
	"context"
	"io"

	"fulfillment/api/response"
	webhookapp "fulfillment/application/webhook"

	"github.com/gin-gonic/gin"
)

const (
	SignatureHeader = "X-Signature"
	maxBodyBytes    = 1 << 20
)

type Controller struct {
	webhookService *webhookapp.Service
}

func NewController(webhookService *webhookapp.Service) *Controller {
	return &Controller{webhookService: webhookService}
}

// RegisterRoutes expects a group rooted at /webhooks.
func (c *Controller) RegisterRoutes(router gin.IRoutes) {
	router.POST("/shipping-provider", c.Shipping)
	router.POST("/payment-provider", c.Payment)
}

type ackResponse struct {
	Outcome webhookapp.Outcome `json:"outcome"`
}

// Shipping POST /api/v1/webhooks/shipping-provider
func (c *Controller) Shipping(ctx *gin.Context) {
	c.handle(ctx, c.webhookService.HandleShippingEvent)
}

// Payment POST /api/v1/webhooks/payment-provider
func (c *Controller) Payment(ctx *gin.Context) {
	c.handle(ctx, c.webhookService.HandlePaymentEvent)
}

type handlerFunc func(ctx context.Context, body []byte, sig string) (webhookapp.Outcome, error)

// handle reads the raw body, which is what the signature covers. Any verified
// payload is acknowledged with 200, including event types nobody handles.
func (c *Controller) handle(ctx *gin.Context, fn handlerFunc) {
	body, err := io.ReadAll(io.LimitReader(ctx.Request.Body, maxBodyBytes))
	if err != nil {
		response.HandleBindError(ctx, err)
		return
	}

	outcome, err := fn(ctx.Request.Context(), body, ctx.GetHeader(SignatureHeader))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleAcknowledged(ctx, ackResponse{Outcome: outcome})
}
