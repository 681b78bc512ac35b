package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const AuthKey = "externalAuthID"

// AuthMiddleware requires the identity context established by the surrounding
// gateway. The gateway authenticates the session and forwards the external
// identity id in X-Auth-ID; without it the request is rejected.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authID := c.GetHeader("X-Auth-ID")
		if authID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set(AuthKey, authID)
		c.Next()
	}
}

func GetAuthID(c *gin.Context) string {
	if val, exists := c.Get(AuthKey); exists {
		return val.(string)
	}
	return ""
}
