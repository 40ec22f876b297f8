// internal/interfaces/http/handlers/sync.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/connectivity"
	syncdomain "github.com/your-org/pos-backend/internal/domain/sync"
)

// SyncHandler exposes the pending queue to the register UI: the status strip
// (online/offline, queue depth) and the operator backlog screen.
type SyncHandler struct {
	queue   syncdomain.Queue
	engine  *syncdomain.Engine
	monitor *connectivity.Monitor
	config  *config.Config
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(queue syncdomain.Queue, engine *syncdomain.Engine, monitor *connectivity.Monitor, cfg *config.Config) *SyncHandler {
	return &SyncHandler{
		queue:   queue,
		engine:  engine,
		monitor: monitor,
		config:  cfg,
	}
}

// Status handles GET /sync/status
func (h *SyncHandler) Status(c *gin.Context) {
	depth, err := h.queue.Depth(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to read queue depth",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Sync status retrieved successfully",
		"data": gin.H{
			"online":        h.monitor.Online(),
			"pending_count": depth,
		},
	})
}

// Backlog handles GET /sync/backlog, failed entries awaiting an operator
func (h *SyncHandler) Backlog(c *gin.Context) {
	entries, err := h.queue.Backlog(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to read backlog",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Backlog retrieved successfully",
		"data":    entries,
	})
}

// Retry handles POST /sync/retry, forcing an immediate drain pass
func (h *SyncHandler) Retry(c *gin.Context) {
	h.engine.Kick()

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Drain pass requested",
	})
}

// Resolve handles GET /sync/orders/:local_id, mapping a local id to its
// server order once synced
func (h *SyncHandler) Resolve(c *gin.Context) {
	localID := c.Param("local_id")

	serverID, ok, err := h.queue.ResolveServerID(c.Request.Context(), localID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to resolve order",
		})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Order not synced yet",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order resolved successfully",
		"data": gin.H{
			"local_id":  localID,
			"server_id": serverID,
		},
	})
}
