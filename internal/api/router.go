package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/DemosCVV/Oge/internal/handlers"
	"github.com/DemosCVV/Oge/internal/interfaces"
	"github.com/DemosCVV/Oge/internal/service"
	"github.com/DemosCVV/Oge/internal/telemetry"
)

func NewRouter(purchases interfaces.PurchaseRepository, conv *service.Conversation, log *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(telemetry.TracingMiddleware())

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "purchase-lifecycle"})
	})

	eventHandler := handlers.NewEventHandler(conv, log)
	r.POST("/events/start", eventHandler.StartPurchase)
	r.POST("/events/receipt", eventHandler.SubmitReceipt)
	r.POST("/events/cancel", eventHandler.CancelPending)
	r.POST("/events/text", eventHandler.Text)

	purchaseHandler := handlers.NewPurchaseHandler(purchases, conv, log)
	r.GET("/purchases/:id", purchaseHandler.GetPurchase)
	r.POST("/purchases/:id/decision", purchaseHandler.Decide)

	adminHandler := handlers.NewAdminHandler(conv, log)
	r.POST("/admin/flows/:flow", adminHandler.EnterFlow)
	r.POST("/admin/broadcast/confirm", adminHandler.ConfirmBroadcast)
	r.GET("/admin/stats", adminHandler.Stats)

	return r
}
