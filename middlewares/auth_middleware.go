package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/global-bites/utils"
)

// Keys set on the gin context by the auth middlewares.
const (
	ContextUserID = "user_id"
	ContextRole   = "role"
	ContextToken  = "token"
	ContextClaims = "claims"
)

func bearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}

func setClaims(c *gin.Context, token string, claims *utils.CustomClaims) {
	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextRole, claims.Role)
	c.Set(ContextToken, token)
	c.Set(ContextClaims, claims)
}

// AuthMiddleware requires a valid, non-revoked bearer token.
func AuthMiddleware(jwt *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.RespondAppError(c, utils.NewUnauthorized("authorization header missing"))
			c.Abort()
			return
		}

		token, ok := bearerToken(authHeader)
		if !ok {
			utils.RespondAppError(c, utils.NewUnauthorized("authorization header must use the Bearer scheme"))
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

// ClaimsFromContext returns what AuthMiddleware stored, if anything.
func ClaimsFromContext(c *gin.Context) (string, *utils.CustomClaims, bool) {
	raw, exists := c.Get(ContextClaims)
	if !exists {
		return "", nil, false
	}
	claims, ok := raw.(*utils.CustomClaims)
	if !ok {
		return "", nil, false
	}
	return c.GetString(ContextToken), claims, true
}
