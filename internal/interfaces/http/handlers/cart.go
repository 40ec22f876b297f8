// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/cart"
	"github.com/your-org/pos-backend/internal/domain/catalog"
	"github.com/your-org/pos-backend/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// CartHandler handles cart endpoints. The device id names the register whose
// cart is being edited; each register has exactly one active cart.
type CartHandler struct {
	cartService *cart.Service
	config      *config.Config
}

// NewCartHandler creates a new cart handler
func NewCartHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *CartHandler {
	catalogService := catalog.NewService(db, redisClient, cfg)
	return &CartHandler{
		cartService: cart.NewService(redisClient, catalogService, cfg),
		config:      cfg,
	}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	deviceID := h.deviceID(c)
	if deviceID == "" {
		return
	}

	cartResponse, err := h.cartService.Get(c.Request.Context(), deviceID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data":    cartResponse,
	})
}

// AddLine handles POST /cart/lines
func (h *CartHandler) AddLine(c *gin.Context) {
	deviceID := h.deviceID(c)
	if deviceID == "" {
		return
	}

	var req cart.AddLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	cartResponse, err := h.cartService.AddLine(c.Request.Context(), deviceID, &req)
	if err != nil {
		h.cartError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Line added successfully",
		"data":    cartResponse,
	})
}

// UpdateQuantityRequest carries a signed quantity delta
type UpdateQuantityRequest struct {
	Delta int `json:"delta" binding:"required"`
}

// UpdateQuantity handles PUT /cart/lines/:id/quantity
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	deviceID := h.deviceID(c)
	if deviceID == "" {
		return
	}

	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	cartResponse, err := h.cartService.UpdateQuantity(c.Request.Context(), deviceID, c.Param("id"), req.Delta)
	if err != nil {
		h.cartError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Quantity updated successfully",
		"data":    cartResponse,
	})
}

// RemoveLine handles DELETE /cart/lines/:id
func (h *CartHandler) RemoveLine(c *gin.Context) {
	deviceID := h.deviceID(c)
	if deviceID == "" {
		return
	}

	cartResponse, err := h.cartService.RemoveLine(c.Request.Context(), deviceID, c.Param("id"))
	if err != nil {
		h.cartError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Line removed successfully",
		"data":    cartResponse,
	})
}

// EditLine handles PUT /cart/lines/:id
func (h *CartHandler) EditLine(c *gin.Context) {
	deviceID := h.deviceID(c)
	if deviceID == "" {
		return
	}

	var req cart.EditLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	cartResponse, err := h.cartService.EditLine(c.Request.Context(), deviceID, c.Param("id"), &req)
	if err != nil {
		h.cartError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Line updated successfully",
		"data":    cartResponse,
	})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	deviceID := h.deviceID(c)
	if deviceID == "" {
		return
	}

	if err := h.cartService.Clear(c.Request.Context(), deviceID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to clear cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
	})
}

// deviceID reads the register identity header; every cart call requires it.
func (h *CartHandler) deviceID(c *gin.Context) string {
	deviceID := c.GetHeader("X-Device-ID")
	if deviceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "X-Device-ID header required",
		})
	}
	return deviceID
}

// cartError maps pricing and validation failures onto 422 so the register UI
// can surface them next to the offending control.
func (h *CartHandler) cartError(c *gin.Context, err error) {
	var ce *apperrors.ComposabilityError
	if errors.As(err, &ce) || apperrors.IsValidation(err) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusBadRequest, gin.H{
		"error": err.Error(),
	})
}
