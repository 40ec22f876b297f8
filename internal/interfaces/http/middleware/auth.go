// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/staff"
	"github.com/your-org/pos-backend/internal/pkg/auth"
)

// AuthMiddleware creates JWT authentication middleware
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	jwtManager := auth.NewJWTManager(cfg)

	return func(c *gin.Context) {
		// Get Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
			})
			c.Abort()
			return
		}

		// Extract token from header
		tokenString := auth.ExtractTokenFromHeader(authHeader)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization header format",
			})
			c.Abort()
			return
		}

		// Validate access token
		claims, err := jwtManager.ValidateAccessToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		// Store staff information in context
		c.Set("staff_id", claims.StaffID)
		c.Set("staff_name", claims.Name)
		c.Set("staff_role", claims.Role)
		c.Set("token_claims", claims)

		c.Next()
	}
}

// ManagerMiddleware ensures the signed-in staff member is a manager
func ManagerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("staff_role")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			c.Abort()
			return
		}

		if role.(staff.Role) != staff.RoleManager {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Manager access required",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetStaffIDFromContext extracts staff ID from gin context
func GetStaffIDFromContext(c *gin.Context) (uint, bool) {
	staffID, exists := c.Get("staff_id")
	if !exists {
		return 0, false
	}
	return staffID.(uint), true
}

// GetStaffRoleFromContext extracts staff role from gin context
func GetStaffRoleFromContext(c *gin.Context) (staff.Role, bool) {
	role, exists := c.Get("staff_role")
	if !exists {
		return "", false
	}
	return role.(staff.Role), true
}
