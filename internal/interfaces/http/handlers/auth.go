// internal/interfaces/http/handlers/auth.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/staff"
	"github.com/your-org/pos-backend/internal/pkg/auth"
	"gorm.io/gorm"
)

// AuthHandler handles staff sign-in endpoints
type AuthHandler struct {
	staffService *staff.Service
	jwtManager   *auth.JWTManager
	config       *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(db *gorm.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		staffService: staff.NewService(db, auth.NewPINManager(cfg)),
		jwtManager:   auth.NewJWTManager(cfg),
		config:       cfg,
	}
}

// LoginRequest represents a PIN sign-in request
type LoginRequest struct {
	StaffID uint   `json:"staff_id" binding:"required"`
	PIN     string `json:"pin" binding:"required"`
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	member, err := h.staffService.Authenticate(c.Request.Context(), req.StaffID, req.PIN)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid staff id or pin",
		})
		return
	}

	accessToken, err := h.jwtManager.GenerateAccessToken(member)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate token",
		})
		return
	}

	refreshToken, err := h.jwtManager.GenerateRefreshToken(member)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate token",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Signed in successfully",
		"data": gin.H{
			"staff":         member,
			"access_token":  accessToken,
			"refresh_token": refreshToken,
		},
	})
}

// RefreshRequest represents a token refresh request
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RefreshToken handles POST /auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	claims, err := h.jwtManager.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid or expired refresh token",
		})
		return
	}

	member, err := h.staffService.Get(c.Request.Context(), claims.StaffID)
	if err != nil || !member.IsActive {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Account no longer active",
		})
		return
	}

	accessToken, err := h.jwtManager.GenerateAccessToken(member)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate token",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Token refreshed successfully",
		"data": gin.H{
			"access_token": accessToken,
		},
	})
}

// ListStaff handles GET /auth/staff, the sign-in picker for the register UI
func (h *AuthHandler) ListStaff(c *gin.Context) {
	members, err := h.staffService.ListActive(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list staff",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Staff retrieved successfully",
		"data":    members,
	})
}
