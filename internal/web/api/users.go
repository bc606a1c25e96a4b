package api

import (
	"errors"

	"github.com/gin-gonic/gin"

	"officehub/auth"
	"officehub/internal/store"
	"officehub/internal/web/middleware"
	"officehub/internal/web/models"
)

func RegisterUserRoutes(router *gin.Engine, authModule *auth.AuthModule, middlewareManager *middleware.MiddlewareManager) {
	r := router.Group("/users")
	r.Use(middlewareManager.RequireAuth(), middlewareManager.RequireAdmin())
	{
		r.GET("", func(c *gin.Context) {
			users, err := authModule.ListUsers(c)
			if err != nil {
				c.JSON(500, gin.H{"error": "Failed to list users"})
				return
			}
			c.JSON(200, gin.H{"users": users})
		})
		r.POST("", func(c *gin.Context) {
			var req models.RegisterRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}
			if err := authModule.CreateUser(c, req.Username, req.Password, req.Role); err != nil {
				if errors.Is(err, store.ErrUserExists) {
					c.JSON(409, gin.H{"error": err.Error()})
					return
				}
				c.JSON(500, gin.H{"error": "Failed to create user"})
				return
			}
			c.JSON(201, gin.H{"message": "User created"})
		})
		r.PUT("/:username/role", func(c *gin.Context) {
			var req models.RoleRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}
			err := authModule.SetRole(c, c.Param("username"), req.Role)
			switch {
			case errors.Is(err, store.ErrNotFound):
				c.JSON(404, gin.H{"error": "User not found"})
			case errors.Is(err, auth.ErrLastAdmin):
				c.JSON(409, gin.H{"error": err.Error()})
			case err != nil:
				c.JSON(400, gin.H{"error": err.Error()})
			default:
				c.JSON(200, gin.H{"message": "Role updated"})
			}
		})
		r.PUT("/:username/password", func(c *gin.Context) {
			var req models.PasswordRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}
			if err := authModule.SetPassword(c, c.Param("username"), req.Password); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					c.JSON(404, gin.H{"error": "User not found"})
					return
				}
				c.JSON(500, gin.H{"error": "Failed to update password"})
				return
			}
			c.JSON(200, gin.H{"message": "Password updated"})
		})
		r.DELETE("/:username", func(c *gin.Context) {
			err := authModule.DeleteUser(c, c.Param("username"), c.GetString("username"))
			switch {
			case errors.Is(err, store.ErrNotFound):
				c.JSON(404, gin.H{"error": "User not found"})
			case errors.Is(err, auth.ErrSelfDelete), errors.Is(err, auth.ErrLastAdmin):
				c.JSON(409, gin.H{"error": err.Error()})
			case err != nil:
				c.JSON(500, gin.H{"error": "Failed to delete user"})
			default:
				c.JSON(200, gin.H{"message": "User deleted"})
			}
		})
	}
}
