// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/cart"
	"github.com/your-org/pos-backend/internal/domain/catalog"
	"github.com/your-org/pos-backend/internal/domain/connectivity"
	"github.com/your-org/pos-backend/internal/domain/order"
	syncdomain "github.com/your-org/pos-backend/internal/domain/sync"
	"github.com/your-org/pos-backend/internal/interfaces/http/middleware"
	"github.com/your-org/pos-backend/internal/pkg/apperrors"
	"github.com/your-org/pos-backend/internal/pkg/receipt"
	"gorm.io/gorm"
)

// cartSource is the slice of the cart service checkout needs.
type cartSource interface {
	Snapshot(ctx context.Context, deviceID string) (*cart.Cart, error)
	Clear(ctx context.Context, deviceID string) error
}

// CheckoutHandler turns the register's cart into a queued order. Checkout
// never waits on the network: the order is accepted locally and the sync
// engine pushes it to the store in the background.
type CheckoutHandler struct {
	cartService    cartSource
	queue          syncdomain.Queue
	engine         *syncdomain.Engine
	monitor        *connectivity.Monitor
	receiptService *receipt.Service
	logger         *logrus.Logger
	config         *config.Config
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(db *gorm.DB, redisClient *redis.Client, queue syncdomain.Queue, engine *syncdomain.Engine, monitor *connectivity.Monitor, logger *logrus.Logger, cfg *config.Config) *CheckoutHandler {
	catalogService := catalog.NewService(db, redisClient, cfg)
	return &CheckoutHandler{
		cartService:    cart.NewService(redisClient, catalogService, cfg),
		queue:          queue,
		engine:         engine,
		monitor:        monitor,
		receiptService: receipt.NewService(cfg),
		logger:         logger,
		config:         cfg,
	}
}

// CheckoutRequest represents an order submission from the register
type CheckoutRequest struct {
	ServiceType   order.ServiceType      `json:"service_type" binding:"required"`
	TableNumber   string                 `json:"table_number"`
	Contact       *order.DeliveryContact `json:"contact"`
	PaymentMethod order.PaymentMethod    `json:"payment_method" binding:"required"`
}

// Checkout handles POST /checkout
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	deviceID := c.GetHeader("X-Device-ID")
	if deviceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "X-Device-ID header required",
		})
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	snapshot, err := h.cartService.Snapshot(c.Request.Context(), deviceID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to read cart",
		})
		return
	}

	var staffID *uint
	if id, ok := middleware.GetStaffIDFromContext(c); ok {
		staffID = &id
	}

	svc := order.ServiceContext{
		Type:        req.ServiceType,
		TableNumber: req.TableNumber,
		Contact:     req.Contact,
	}
	draft, err := order.BuildDraft(snapshot, svc, req.PaymentMethod, staffID)
	if err != nil {
		if apperrors.IsValidation(err) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": err.Error(),
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	localID, err := h.queue.Enqueue(c.Request.Context(), draft)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to queue order",
		})
		return
	}

	// The order is durably queued; the cart is done regardless of sync
	// state, but a cart that will not clear needs to show up in the logs
	if err := h.cartService.Clear(c.Request.Context(), deviceID); err != nil {
		h.logger.WithFields(logrus.Fields{
			"device_id": deviceID,
			"local_id":  localID,
			"error":     err,
		}).Warn("cart not cleared after checkout")
	}

	h.engine.Kick()

	status := "accepted"
	if !h.monitor.Online() {
		status = "accepted, pending sync"
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Order " + status,
		"data": gin.H{
			"local_id":     localID,
			"total":        draft.Total,
			"pending_sync": !h.monitor.Online(),
		},
	})
}

// Ticket handles GET /checkout/:local_id/ticket, the printable order ticket.
// Until the order syncs, the ticket carries the local id and the pending
// banner.
func (h *CheckoutHandler) Ticket(c *gin.Context) {
	localID := c.Param("local_id")

	entry, err := h.queue.Get(c.Request.Context(), localID)
	if err != nil {
		// Synced entries leave the queue; point the caller at the server order
		if serverID, ok, rerr := h.queue.ResolveServerID(c.Request.Context(), localID); rerr == nil && ok {
			c.JSON(http.StatusOK, gin.H{
				"message": "Order already synced",
				"data":    gin.H{"server_id": serverID},
			})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{
			"error": "No pending ticket for this order",
		})
		return
	}

	pdf, err := h.receiptService.GenerateTicket(&entry.Draft, localID, true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to render ticket",
		})
		return
	}

	c.Header("Content-Disposition", "inline; filename=ticket-"+localID+".pdf")
	c.Data(http.StatusOK, "application/pdf", pdf.Bytes())
}
