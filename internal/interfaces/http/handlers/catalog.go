// internal/interfaces/http/handlers/catalog.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/catalog"
	"github.com/your-org/pos-backend/internal/pkg/events"
	"gorm.io/gorm"
)

// CatalogHandler handles menu endpoints
type CatalogHandler struct {
	catalogService *catalog.Service
	bus            *events.Bus
	config         *config.Config
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(db *gorm.DB, redisClient *redis.Client, bus *events.Bus, cfg *config.Config) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalog.NewService(db, redisClient, cfg),
		bus:            bus,
		config:         cfg,
	}
}

// GetProducts handles GET /catalog/products
func (h *CatalogHandler) GetProducts(c *gin.Context) {
	products, err := h.catalogService.GetProducts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve products",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Products retrieved successfully",
		"data":    products,
	})
}

// GetProduct handles GET /catalog/products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return
	}

	product, err := h.catalogService.GetProduct(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product retrieved successfully",
		"data":    product,
	})
}

// GetModifiers handles GET /catalog/modifiers
func (h *CatalogHandler) GetModifiers(c *gin.Context) {
	modifiers, err := h.catalogService.GetModifiers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve modifiers",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Modifiers retrieved successfully",
		"data":    modifiers,
	})
}

// Refresh handles POST /catalog/refresh, dropping the menu cache after an
// admin-side change.
func (h *CatalogHandler) Refresh(c *gin.Context) {
	if err := h.catalogService.Refresh(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to refresh catalog",
		})
		return
	}

	if h.bus != nil {
		h.bus.Publish(events.Event{Topic: events.TopicCatalogChanged})
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Catalog refreshed successfully",
	})
}
