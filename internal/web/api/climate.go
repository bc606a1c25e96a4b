package api

import (
	"github.com/gin-gonic/gin"

	"officehub/internal/store"
	"officehub/internal/web/middleware"
	"officehub/internal/web/models"
)

func RegisterClimateRoutes(router *gin.Engine, st store.Store, middlewareManager *middleware.MiddlewareManager) {
	r := router.Group("/climate")
	r.Use(middlewareManager.RequireAuth())
	{
		r.GET("/status", func(c *gin.Context) {
			state, err := st.OfficeState(c)
			if err != nil {
				c.JSON(500, gin.H{"error": "Failed to load office state"})
				return
			}
			c.JSON(200, state)
		})
		r.POST("/temperature", middlewareManager.RequireAdmin(), func(c *gin.Context) {
			var req models.TemperatureRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}
			if req.Temperature < 10 || req.Temperature > 30 {
				c.JSON(400, gin.H{"error": "Temperature must be between 10 and 30"})
				return
			}
			if err := st.SetTemperature(c, int(req.Temperature)); err != nil {
				c.JSON(500, gin.H{"error": "Failed to set temperature"})
				return
			}
			c.JSON(200, gin.H{"message": "Temperature updated"})
		})
		r.POST("/hvac", middlewareManager.RequireAdmin(), func(c *gin.Context) {
			var req models.HVACModeRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}
			switch req.Mode {
			case "heat", "cool", "off":
			default:
				c.JSON(400, gin.H{"error": "Mode must be heat, cool or off"})
				return
			}
			if err := st.SetHVACMode(c, req.Mode); err != nil {
				c.JSON(500, gin.H{"error": "Failed to set HVAC mode"})
				return
			}
			c.JSON(200, gin.H{"message": "HVAC mode updated"})
		})
		r.POST("/lights", middlewareManager.RequireAdmin(), func(c *gin.Context) {
			var req models.LightsRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}
			if req.State != "on" && req.State != "off" {
				c.JSON(400, gin.H{"error": "State must be on or off"})
				return
			}
			if err := st.SetLights(c, req.State == "on"); err != nil {
				c.JSON(500, gin.H{"error": "Failed to set lights"})
				return
			}
			c.JSON(200, gin.H{"message": "Lights updated"})
		})
	}
}
