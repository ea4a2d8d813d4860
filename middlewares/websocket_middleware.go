package middlewares

import (
	"github.com/gin-gonic/gin"

	"github.com/menudigital/backend/utils"
)

// WebSocketAuthMiddleware authenticates the KDS socket via a query token,
// since browsers cannot set headers on websocket upgrades.
func WebSocketAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.AbortWithStatus(401)
			return
		}

		claims, err := utils.ParseToken(token)
		if err != nil {
			c.AbortWithStatus(401)
			return
		}

		c.Set("role", claims.Role)
		c.Set("userID", claims.UserID)
		c.Set("restaurantID", claims.RestaurantID)

		c.Next()
	}
}
