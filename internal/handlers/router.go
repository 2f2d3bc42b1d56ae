package handlers

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/Delyplott/DelyPlot-Web/internal/middleware"
	"github.com/Delyplott/DelyPlot-Web/internal/services"
)

// NewRouter wires every API route. The swagger UI is only mounted when
// withDocs is set, which keeps tests free of the generated docs package.
func NewRouter(jwtSecret string, orders *services.OrderService, logger *zap.SugaredLogger, withDocs bool) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	if withDocs {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Health check (no auth)
	router.GET("/health", HealthHandler)

	authHandler := NewAuthHandler(jwtSecret, logger)
	ordersHandler := NewOrdersHandler(orders, logger)

	router.POST("/api/v1/auth/anonymous", authHandler.SignInAnonymously)

	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(jwtSecret))

	// Orders
	api.PUT("/orders/:order_id", ordersHandler.CreateOrder)
	api.GET("/orders/:order_id", ordersHandler.GetOrder)
	api.PATCH("/orders/:order_id/files/:index", ordersHandler.PatchFile)
	api.POST("/orders/:order_id/uploaded", ordersHandler.MarkUploaded)
	api.GET("/orders/:order_id/stream", ordersHandler.StreamOrder)

	// Tools
	api.POST("/tools/analyze", Analyze)
	api.POST("/tools/quote", Quote)

	return router
}
