// internal/interfaces/http/handlers/orders.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/order"
	"github.com/your-org/pos-backend/internal/interfaces/http/middleware"
	"github.com/your-org/pos-backend/internal/pkg/apperrors"
	"github.com/your-org/pos-backend/internal/pkg/events"
	"github.com/your-org/pos-backend/internal/pkg/messaging"
	"gorm.io/gorm"
)

// OrderHandler handles kitchen board and order lifecycle endpoints
type OrderHandler struct {
	orderService *order.Service
	config       *config.Config
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(db *gorm.DB, cfg *config.Config, logger *logrus.Logger, bus *events.Bus) *OrderHandler {
	notifier := messaging.NewService(cfg)
	return &OrderHandler{
		orderService: order.NewService(db, cfg, logger, notifier, bus),
		config:       cfg,
	}
}

// ListActive handles GET /orders, the kitchen board feed
func (h *OrderHandler) ListActive(c *gin.Context) {
	orders, err := h.orderService.ListActive(c.Request.Context())
	if err != nil {
		h.storeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Orders retrieved successfully",
		"data":    orders,
	})
}

// GetOrder handles GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid order ID",
		})
		return
	}

	o, err := h.orderService.GetOrder(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order retrieved successfully",
		"data":    o,
	})
}

// AdvanceStatus handles PUT /orders/:id/advance, one step along the chain
func (h *OrderHandler) AdvanceStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid order ID",
		})
		return
	}

	staffID, _ := middleware.GetStaffIDFromContext(c)

	next, err := h.orderService.AdvanceStatus(c.Request.Context(), uint(id), staffID)
	if err != nil {
		h.storeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order advanced successfully",
		"data": gin.H{
			"order_id": id,
			"status":   next,
		},
	})
}

// CancelRequest carries the cancellation reason for the audit trail
type CancelRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// Cancel handles PUT /orders/:id/cancel
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid order ID",
		})
		return
	}

	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	staffID, _ := middleware.GetStaffIDFromContext(c)

	if err := h.orderService.Cancel(c.Request.Context(), uint(id), req.Reason, staffID); err != nil {
		h.storeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order cancelled successfully",
	})
}

// storeError maps the error taxonomy onto HTTP statuses
func (h *OrderHandler) storeError(c *gin.Context, err error) {
	switch {
	case apperrors.IsPermission(err):
		c.JSON(http.StatusForbidden, gin.H{
			"error": err.Error(),
		})
	case apperrors.IsTransport(err):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Remote store unreachable",
		})
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
	}
}
