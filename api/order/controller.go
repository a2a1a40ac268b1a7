/*
Package order exposes checkout, payment verification and order management.

Binding failures answer 400 through response.HandleBindError; service errors go
through response.HandleAppError, which maps them to a status code.
*/
package order

import (
	"net/http"

	"fulfillment/api/ctxutil"
	"fulfillment/api/response"
	orderapp "fulfillment/application/order"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	orderService *orderapp.ApplicationService
}

func NewController(orderService *orderapp.ApplicationService) *Controller {
	return &Controller{
		orderService: orderService,
	}
}

// RegisterRoutes mounts customer routes on user and admin-only routes on admin.
func (c *Controller) RegisterRoutes(user, admin gin.IRoutes) {
	user.POST("/checkout", c.Checkout)
	user.POST("/verify-payment", c.VerifyPayment)
	user.GET("/orders", c.ListOrders)
	user.GET("/orders/:id", c.GetOrder)
	user.GET("/orders/:id/track", c.TrackOrder)
	user.PUT("/orders/:id/cancel", c.CancelOrder)

	admin.PUT("/orders/:id/status", c.UpdateStatus)
	admin.POST("/orders/:id/book-shipment", c.BookShipment)
}

// Checkout creates an order from the caller's cart.
// POST /api/v1/checkout
//
// A repeated idempotency key answers 200 with the original order instead of 201.
func (c *Controller) Checkout(ctx *gin.Context) {
	var req orderapp.CheckoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleBindError(ctx, err)
		return
	}

	resp, err := c.orderService.Checkout(ctx.Request.Context(), ctxutil.UserID(ctx), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleIdempotent(ctx, resp, resp.Replayed, "order created", "order already created for this idempotency key")
}

// VerifyPayment POST /api/v1/verify-payment
func (c *Controller) VerifyPayment(ctx *gin.Context) {
	var req orderapp.VerifyPaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleBindError(ctx, err)
		return
	}

	resp, err := c.orderService.VerifyPayment(ctx.Request.Context(), ctxutil.UserID(ctx), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	message := "payment verified"
	if resp.ShipmentError != "" {
		message = "payment verified, shipment booking pending"
	}
	response.HandleSuccess(ctx, resp, message)
}

// ListOrders GET /api/v1/orders
func (c *Controller) ListOrders(ctx *gin.Context) {
	orders, err := c.orderService.ListOrders(ctx.Request.Context(), ctxutil.UserID(ctx))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, orders, "orders retrieved")
}

// GetOrder GET /api/v1/orders/:id
func (c *Controller) GetOrder(ctx *gin.Context) {
	o, err := c.orderService.GetOrder(ctx.Request.Context(), ctxutil.UserID(ctx), ctx.Param("id"))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, o, "order retrieved")
}

// TrackOrder GET /api/v1/orders/:id/track
func (c *Controller) TrackOrder(ctx *gin.Context) {
	tracking, err := c.orderService.TrackOrder(ctx.Request.Context(), ctxutil.UserID(ctx), ctx.Param("id"))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, tracking, "tracking retrieved")
}

// CancelOrder PUT /api/v1/orders/:id/cancel
// The body is optional.
func (c *Controller) CancelOrder(ctx *gin.Context) {
	var req orderapp.CancelOrderRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			response.HandleBindError(ctx, err)
			return
		}
	}

	o, err := c.orderService.CancelOrder(ctx.Request.Context(), ctxutil.UserID(ctx), ctx.Param("id"), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, o, "order cancelled")
}

// UpdateStatus PUT /api/v1/admin/orders/:id/status
func (c *Controller) UpdateStatus(ctx *gin.Context) {
	var req orderapp.UpdateOrderStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleBindError(ctx, err)
		return
	}

	o, err := c.orderService.UpdateStatus(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, o, "order status updated")
}

// BookShipment retries booking for a paid order that has no shipment.
// POST /api/v1/admin/orders/:id/book-shipment
//
// A provider failure is reported in the body with 502 so the caller can retry.
func (c *Controller) BookShipment(ctx *gin.Context) {
	booking, err := c.orderService.RebookShipment(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	if !booking.Booked {
		ctx.JSON(http.StatusBadGateway, &response.Response{
			Success:   false,
			Data:      booking,
			Error:     "SHIPMENT_BOOKING_FAILED",
			Message:   booking.Error,
			Code:      http.StatusBadGateway,
			RequestID: response.GetRequestID(ctx),
		})
		return
	}
	response.HandleCreated(ctx, booking, "shipment booked")
}
