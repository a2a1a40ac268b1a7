package api

import (
	"net/http"

	"fulfillment/api/health"
	"fulfillment/api/middleware"
	"fulfillment/api/order"
	"fulfillment/api/refund"
	"fulfillment/api/response"
	"fulfillment/api/webhook"
	"fulfillment/config"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Router Route configuration
type Router struct {
	engine            *gin.Engine
	config            *config.Config
	healthController  *health.Controller
	orderController   *order.Controller
	refundController  *refund.Controller
	webhookController *webhook.Controller
}

// NewRouter Create route configuration
func NewRouter(
	cfg *config.Config,
	healthController *health.Controller,
	orderController *order.Controller,
	refundController *refund.Controller,
	webhookController *webhook.Controller,
) *Router {
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	response.ExposeErrorDetail(!cfg.IsProduction())

	engine := gin.New()

	// Order matters: the request id must exist before anything logs.
	engine.Use(middleware.RequestIDMiddleware())
	engine.Use(middleware.RecoveryMiddleware())
	engine.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	engine.Use(middleware.LoggingMiddleware())
	engine.Use(middleware.MetricsMiddleware())
	engine.Use(middleware.CORSMiddleware(&cfg.CORS))
	engine.Use(middleware.RateLimitMiddleware(&cfg.Server.RateLimit))

	return &Router{
		engine:            engine,
		config:            cfg,
		healthController:  healthController,
		orderController:   orderController,
		refundController:  refundController,
		webhookController: webhookController,
	}
}

// SetupRoutes Set up all routes
func (r *Router) SetupRoutes() {
	apiGroup := r.engine.Group("/api/v1")
	r.healthController.RegisterRoutes(apiGroup)
	r.webhookController.RegisterRoutes(apiGroup.Group("/webhooks"))

	authed := apiGroup.Group("", middleware.AuthMiddleware(&r.config.Auth))
	admin := authed.Group("/admin", middleware.RequireAdmin())
	r.orderController.RegisterRoutes(authed, admin)

	refunds := authed.Group("/refunds")
	r.refundController.RegisterRoutes(refunds, refunds.Group("/admin", middleware.RequireAdmin()))

	r.engine.GET("/metrics", middleware.PrometheusHandler())
	r.engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":    r.config.App.Name,
			"version": r.config.App.Version,
			"env":     r.config.App.Env,
			"health":  "/api/v1/health",
			"metrics": "/metrics",
		})
	})
}

// GetEngine Get Gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
