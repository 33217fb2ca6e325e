package middlewares

import (
	"github.com/gin-gonic/gin"

	"github.com/dinehub/restaurant-backend/utils"
)

// WebSocketAuthMiddleware validates the token passed as a query parameter,
// since browsers cannot set headers on WebSocket upgrades.
func WebSocketAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.AbortWithStatus(401)
			return
		}

		claims, err := utils.ValidateToken(token)
		if err != nil {
			c.AbortWithStatus(401)
			return
		}

		c.Set("role", claims.Role)
		c.Set("user_id", claims.UserID)

		c.Next()
	}
}
