package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/global-bites/utils"
)

// WebSocketAuthMiddleware accepts the token as a query parameter since browsers cannot set
// headers on websocket upgrades. A bearer header also works.
func WebSocketAuthMiddleware(jwt *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			token, _ = bearerToken(c.GetHeader("Authorization"))
		}
		if token == "" {
			utils.RespondAppError(c, utils.NewUnauthorized("token missing"))
			c.Abort()
			return
		}

		claims, err := jwt.ParseToken(token)
		if err != nil {
			utils.RespondAppError(c, utils.NewUnauthorized("%s", err.Error()))
			c.Abort()
			return
		}

		setClaims(c, token, claims)
		c.Next()
	}
}
