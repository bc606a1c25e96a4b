package api

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"officehub/auth"
	"officehub/internal/web/middleware"
	"officehub/internal/web/models"
)

func RegisterAuthRoutes(router *gin.Engine, authModule *auth.AuthModule, middlewareManager *middleware.MiddlewareManager) {
	r := router.Group("/auth")
	{
		r.POST("/login", func(c *gin.Context) {
			var loginRequest models.LoginRequest
			if err := c.ShouldBindJSON(&loginRequest); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}
			token, role, err := authModule.Login(c, loginRequest.Username, loginRequest.Password)
			if err != nil {
				c.JSON(401, gin.H{"error": err.Error()})
				return
			}
			c.JSON(200, gin.H{"token": token, "role": role})
		})
		r.POST("/login/session", func(c *gin.Context) {
			var loginRequest models.LoginRequest
			if err := c.ShouldBindJSON(&loginRequest); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}
			token, err := authModule.LoginWithSession(c, loginRequest.Username, loginRequest.Password)
			if err != nil {
				if errors.Is(err, auth.ErrSessionsDisabled) {
					c.JSON(503, gin.H{"error": err.Error()})
					return
				}
				c.JSON(401, gin.H{"error": err.Error()})
				return
			}
			c.JSON(200, gin.H{"token": token})
		})
		r.POST("/logout", middlewareManager.RequireAuth(), func(c *gin.Context) {
			token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
			if err := authModule.Logout(c, token); err != nil {
				c.JSON(500, gin.H{"error": "Logout failed"})
				return
			}
			c.JSON(200, gin.H{"message": "Logged out"})
		})
	}
}
