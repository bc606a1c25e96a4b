package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RequireAuth validates the bearer token and stores the username and role on
// the request context. JWTs are checked first, then Redis session tokens.
func (m *MiddlewareManager) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		username, role, err := m.auth.ValidateTokenJWT(c, token)
		if err != nil {
			username, role, err = m.auth.ValidateTokenSession(c, token)
		}
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		c.Set("username", username)
		c.Set("role", role)

		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func (m *MiddlewareManager) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("role") != "admin" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
