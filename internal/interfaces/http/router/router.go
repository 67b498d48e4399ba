package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrpcore/backend/internal/infrastructure/auth"
	"github.com/mrpcore/backend/internal/infrastructure/config"
	"github.com/mrpcore/backend/internal/infrastructure/logger"
	"github.com/mrpcore/backend/internal/interfaces/http/handler"
	"github.com/mrpcore/backend/internal/interfaces/http/middleware"
)

// Handlers bundles everything the router mounts
type Handlers struct {
	PurchaseOrders *handler.PurchaseOrderHandler
	Bulk           *handler.BulkHandler
	Notifications  *handler.NotificationHandler
}

// New builds the gin engine with middleware and all API routes mounted.
// The health endpoint is unauthenticated; everything under /api/v1 requires
// a valid bearer token.
func New(cfg *config.Config, jwtService *auth.JWTService, log *zap.Logger, handlers Handlers) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.CORS(cfg.HTTP.CORSAllowOrigins),
	)

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": cfg.App.Name})
	})

	api := engine.Group("/api/v1", middleware.JWTAuth(jwtService, log))

	orders := api.Group("/purchase-orders")
	{
		orders.POST("", handlers.PurchaseOrders.Create)
		orders.GET("", handlers.PurchaseOrders.List)
		orders.GET("/:id", handlers.PurchaseOrders.Get)
		orders.POST("/:id/submit", handlers.PurchaseOrders.Submit)
		orders.POST("/:id/approve", handlers.PurchaseOrders.Approve)
		orders.POST("/:id/reject", handlers.PurchaseOrders.Reject)
		orders.POST("/:id/cancel", handlers.PurchaseOrders.Cancel)
		orders.GET("/:id/history", handlers.PurchaseOrders.History)

		orders.POST("/bulk", handlers.Bulk.BulkCreate)
		orders.POST("/bulk/status", handlers.Bulk.BulkUpdateStatus)
		orders.POST("/bulk/status/validate", handlers.Bulk.ValidateBulkStatus)
		orders.POST("/import", handlers.Bulk.ImportCSV)
		orders.POST("/import/validate", handlers.Bulk.ValidateCSV)
	}

	notifications := api.Group("/notifications")
	{
		notifications.GET("", handlers.Notifications.ListUnread)
		notifications.POST("/:id/read", handlers.Notifications.MarkRead)
	}

	return engine, nil
}
