package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sparesuite/backend/internal/infrastructure/config"
	"github.com/sparesuite/backend/internal/infrastructure/logger"
	"github.com/sparesuite/backend/internal/interfaces/http/handler"
	"github.com/sparesuite/backend/internal/interfaces/http/middleware"
)

// Handlers bundles everything the router mounts
type Handlers struct {
	Orders    *handler.PurchaseOrderHandler
	Analytics *handler.AnalyticsHandler
}

// New builds the gin engine with middleware, health endpoints, the export
// file server and all API routes under /api/v1
func New(cfg *config.Config, log *zap.Logger, h Handlers) *gin.Engine {
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		_ = engine.SetTrustedProxies(cfg.HTTP.TrustedProxies)
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowOrigins: cfg.HTTP.CORSAllowOrigins,
		AllowMethods: cfg.HTTP.CORSAllowMethods,
		AllowHeaders: cfg.HTTP.CORSAllowHeaders,
	}))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Generated report files are served as static downloads
	engine.Static(cfg.Export.BaseURL, cfg.Export.Dir)

	api := engine.Group("/api/v1")
	api.Use(middleware.JWTAuth(cfg.JWT))

	orders := api.Group("/purchase-orders")
	{
		orders.POST("", h.Orders.Create)
		orders.GET("", h.Orders.List)
		orders.POST("/bulk-update", h.Orders.BulkUpdate)
		orders.GET("/:id", h.Orders.Get)
		orders.PUT("/:id", h.Orders.Update)
		orders.DELETE("/:id", h.Orders.Delete)
		orders.PATCH("/:id/status", h.Orders.UpdateStatus)
		orders.PUT("/:id/payment-status", h.Orders.UpdatePaymentStatus)
		orders.POST("/:id/cancel", h.Orders.Cancel)
	}

	reports := api.Group("/reports")
	{
		reports.GET("/purchase-stats", h.Analytics.Stats)
		reports.GET("/purchase-analytics", h.Analytics.Analytics)
		reports.GET("/suppliers", h.Analytics.SupplierReport)
		reports.GET("/category-spend", h.Analytics.CategorySpend)
		reports.POST("/export/:format", h.Analytics.Export)
	}

	return engine
}
