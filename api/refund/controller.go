// Package refund exposes the refund request and admin decision endpoints.
package refund

import (
	"fulfillment/api/ctxutil"
	"fulfillment/api/response"
	refundapp "fulfillment/application/refund"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	refundService *refundapp.ApplicationService
}

func NewController(refundService *refundapp.ApplicationService) *Controller {
	return &Controller{refundService: refundService}
}

// RegisterRoutes mounts customer routes on user and admin-only routes on admin.
// Both groups are expected to be rooted at /refunds.
func (c *Controller) RegisterRoutes(user, admin gin.IRoutes) {
	user.POST("/request", c.Request)
	user.GET("/my-requests", c.ListMine)

	admin.GET("/all", c.ListAll)
	admin.POST("/:id/approve", c.Approve)
	admin.POST("/:id/reject", c.Reject)
	admin.GET("/:id/check-status", c.CheckStatus)
}

// Request POST /api/v1/refunds/request
func (c *Controller) Request(ctx *gin.Context) {
	var req refundapp.RequestRefundRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleBindError(ctx, err)
		return
	}

	r, err := c.refundService.Request(ctx.Request.Context(), ctxutil.UserID(ctx), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleCreated(ctx, r, "refund requested")
}

// ListMine GET /api/v1/refunds/my-requests
func (c *Controller) ListMine(ctx *gin.Context) {
	refunds, err := c.refundService.ListMine(ctx.Request.Context(), ctxutil.UserID(ctx))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, refunds, "refunds retrieved")
}

// ListAll GET /api/v1/refunds/admin/all?status&page&limit
func (c *Controller) ListAll(ctx *gin.Context) {
	var req refundapp.ListRefundsRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		response.HandleBindError(ctx, err)
		return
	}

	list, err := c.refundService.ListAll(ctx.Request.Context(), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandlePaginated(ctx, list.Items, response.NewPagination(list.Page, list.Limit, list.Total), "refunds retrieved")
}

// Approve POST /api/v1/refunds/admin/:id/approve
// The body is optional.
func (c *Controller) Approve(ctx *gin.Context) {
	var req refundapp.ApproveRefundRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			response.HandleBindError(ctx, err)
			return
		}
	}

	r, err := c.refundService.Approve(ctx.Request.Context(), ctxutil.UserID(ctx), ctx.Param("id"), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, r, "refund approved")
}

// Reject POST /api/v1/refunds/admin/:id/reject
func (c *Controller) Reject(ctx *gin.Context) {
	var req refundapp.RejectRefundRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleBindError(ctx, err)
		return
	}

	r, err := c.refundService.Reject(ctx.Request.Context(), ctxutil.UserID(ctx), ctx.Param("id"), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, r, "refund rejected")
}

// CheckStatus GET /api/v1/refunds/admin/:id/check-status
func (c *Controller) CheckStatus(ctx *gin.Context) {
	status, err := c.refundService.CheckStatus(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, status, "refund status refreshed")
}
