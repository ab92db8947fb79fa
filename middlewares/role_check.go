package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/global-bites/utils"
)

// RequireRole lets the request through when the authenticated role is one of roles.
// It must run after AuthMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		if role == "" {
			utils.RespondAppError(c, utils.NewUnauthorized("unauthorized"))
			c.Abort()
			return
		}

		if _, ok := allowed[role]; !ok {
			utils.InfoLogger.WithFields(logrus.Fields{
				"user_id": c.GetString(ContextUserID),
				"role":    role,
				"path":    c.FullPath(),
			}).Warn("Access denied")
			utils.RespondAppError(c, utils.NewForbidden("%s access required", roles[0]))
			c.Abort()
			return
		}

		c.Next()
	}
}
