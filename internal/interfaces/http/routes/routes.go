// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/connectivity"
	syncdomain "github.com/your-org/pos-backend/internal/domain/sync"
	"github.com/your-org/pos-backend/internal/interfaces/http/handlers"
	"github.com/your-org/pos-backend/internal/interfaces/http/middleware"
	"github.com/your-org/pos-backend/internal/pkg/events"
	"gorm.io/gorm"
)

// Deps carries the shared components the route handlers need beyond the two
// data stores.
type Deps struct {
	DB          *gorm.DB
	RedisClient *redis.Client
	Config      *config.Config
	Logger      *logrus.Logger
	Queue       syncdomain.Queue
	Engine      *syncdomain.Engine
	Monitor     *connectivity.Monitor
	Bus         *events.Bus
}

// SetupRoutes wires all API routes
func SetupRoutes(rg *gin.RouterGroup, deps Deps) {
	setupAuthRoutes(rg, deps)
	setupCatalogRoutes(rg, deps)
	setupCartRoutes(rg, deps)
	setupCheckoutRoutes(rg, deps)
	setupOrderRoutes(rg, deps)
	setupSyncRoutes(rg, deps)
}

// setupAuthRoutes sets up staff sign-in routes
func setupAuthRoutes(rg *gin.RouterGroup, deps Deps) {
	authHandler := handlers.NewAuthHandler(deps.DB, deps.Config)

	auth := rg.Group("/auth")
	{
		// Public auth endpoints
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)
		auth.GET("/staff", authHandler.ListStaff)
	}
}

// setupCatalogRoutes sets up menu routes
func setupCatalogRoutes(rg *gin.RouterGroup, deps Deps) {
	catalogHandler := handlers.NewCatalogHandler(deps.DB, deps.RedisClient, deps.Bus, deps.Config)

	catalog := rg.Group("/catalog")
	{
		catalog.GET("/products", catalogHandler.GetProducts)
		catalog.GET("/products/:id", catalogHandler.GetProduct)
		catalog.GET("/modifiers", catalogHandler.GetModifiers)

		// Cache invalidation is an admin action
		protected := catalog.Group("")
		protected.Use(middleware.AuthMiddleware(deps.Config), middleware.ManagerMiddleware())
		{
			protected.POST("/refresh", catalogHandler.Refresh)
		}
	}
}

// setupCartRoutes sets up register cart routes
func setupCartRoutes(rg *gin.RouterGroup, deps Deps) {
	cartHandler := handlers.NewCartHandler(deps.DB, deps.RedisClient, deps.Config)

	cart := rg.Group("/cart")
	cart.Use(middleware.AuthMiddleware(deps.Config))
	{
		cart.GET("", cartHandler.GetCart)
		cart.DELETE("", cartHandler.ClearCart)
		cart.POST("/lines", cartHandler.AddLine)
		cart.PUT("/lines/:id", cartHandler.EditLine)
		cart.PUT("/lines/:id/quantity", cartHandler.UpdateQuantity)
		cart.DELETE("/lines/:id", cartHandler.RemoveLine)
	}
}

// setupCheckoutRoutes sets up order capture routes
func setupCheckoutRoutes(rg *gin.RouterGroup, deps Deps) {
	checkoutHandler := handlers.NewCheckoutHandler(deps.DB, deps.RedisClient, deps.Queue, deps.Engine, deps.Monitor, deps.Logger, deps.Config)

	checkout := rg.Group("/checkout")
	checkout.Use(middleware.AuthMiddleware(deps.Config))
	{
		checkout.POST("", checkoutHandler.Checkout)
		checkout.GET("/:local_id/ticket", checkoutHandler.Ticket)
	}
}

// setupOrderRoutes sets up kitchen board routes
func setupOrderRoutes(rg *gin.RouterGroup, deps Deps) {
	orderHandler := handlers.NewOrderHandler(deps.DB, deps.Config, deps.Logger, deps.Bus)

	orders := rg.Group("/orders")
	orders.Use(middleware.AuthMiddleware(deps.Config))
	{
		orders.GET("", orderHandler.ListActive)
		orders.GET("/:id", orderHandler.GetOrder)
		orders.PUT("/:id/advance", orderHandler.AdvanceStatus)

		// Cancellation needs a manager
		managed := orders.Group("")
		managed.Use(middleware.ManagerMiddleware())
		{
			managed.PUT("/:id/cancel", orderHandler.Cancel)
		}
	}
}

// setupSyncRoutes sets up pending queue routes
func setupSyncRoutes(rg *gin.RouterGroup, deps Deps) {
	syncHandler := handlers.NewSyncHandler(deps.Queue, deps.Engine, deps.Monitor, deps.Config)

	sync := rg.Group("/sync")
	sync.Use(middleware.AuthMiddleware(deps.Config))
	{
		sync.GET("/status", syncHandler.Status)
		sync.GET("/backlog", syncHandler.Backlog)
		sync.GET("/orders/:local_id", syncHandler.Resolve)
		sync.POST("/retry", syncHandler.Retry)
	}
}
