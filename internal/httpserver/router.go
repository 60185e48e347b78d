package httpserver

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Deps carries the services the router needs.
type Deps struct {
	CartSvc CartService
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
	}))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	api := router.Group("/api/cart")
	{
		api.GET("/:userId", getCartHandler(deps.CartSvc, logger))
		api.POST("/:userId/items", addItemHandler(deps.CartSvc, logger))
		api.PUT("/items/:itemId", updateItemHandler(deps.CartSvc, logger))
		api.DELETE("/items/:itemId", removeItemHandler(deps.CartSvc, logger))
		api.DELETE("/:userId/clear", clearCartHandler(deps.CartSvc, logger))
		api.POST("/:userId/close", closeCartHandler(deps.CartSvc, logger))
		api.GET("/:userId/total", totalsHandler(deps.CartSvc, logger))
	}

	return router
}
