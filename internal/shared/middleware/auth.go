package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"catalog-backend/pkg/jwt"
)

// AuthMiddleware verifies the Bearer token and stores the caller's identity
// on the context. The ingestion endpoint records preferred_username as the
// acting user on studio pushes.
func AuthMiddleware(manager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(401, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(401, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := manager.ValidateToken(parts[1])
		if err != nil {
			c.JSON(401, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("username", claims.PreferredUsername)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// StaffOnly rejects callers whose role is not staff. Ingestion is a
// staff-only operation.
func StaffOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("role") != "staff" {
			c.JSON(403, gin.H{"error": "staff access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
