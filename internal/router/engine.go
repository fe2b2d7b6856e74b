package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"julianmorley.ca/con-plar/storefront/pkg/global"
)

func InitEngine(cfg *global.Config) *gin.Engine {
	switch {
	case cfg.IsProduction():
		gin.SetMode(gin.ReleaseMode)
	case cfg.Env == "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(RequestLogger(), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	return router
}

// InitializeRoutes keeps the flat paths existing clients already call.
func InitializeRoutes(router *gin.Engine, h *Handler) {
	router.GET("/health", h.HealthCheck)

	router.GET("/items", h.GetAllItems)
	router.GET("/items/search", RequireQuery("name"), h.SearchItems)
	router.DELETE("/items/:id", h.DeleteItem)
	router.POST("/add-dummy-items", h.AddDummyItems)

	router.POST("/addToCart", h.AddToCart)
	router.GET("/getCart/:userId", h.GetCart)
	router.DELETE("/removeFromCart/:id", h.RemoveFromCart)

	router.POST("/login", h.Login)
	router.POST("/register", h.Register)

	analytics := router.Group("/analytics")
	{
		analytics.GET("/top-carted", h.GetTopCarted)
		analytics.GET("/ai/cart-report", h.GenerateAICartReport)
	}
}
