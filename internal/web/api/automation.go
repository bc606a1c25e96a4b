package api

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"officehub/internal/engine"
	domain "officehub/internal/models"
	"officehub/internal/store"
	"officehub/internal/web/middleware"
	"officehub/internal/web/models"
)

func RegisterAutomationRoutes(router *gin.Engine, eng *engine.Engine, st store.Store, middlewareManager *middleware.MiddlewareManager) {
	r := router.Group("/automation")
	r.Use(middlewareManager.RequireAuth())
	{
		r.GET("/rules", func(c *gin.Context) {
			rules, err := eng.ListRules(c)
			if err != nil {
				c.JSON(500, gin.H{"error": "Failed to list rules"})
				return
			}
			c.JSON(200, gin.H{"rules": rules})
		})
		r.POST("/rules", middlewareManager.RequireAdmin(), func(c *gin.Context) {
			var req models.RuleRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}
			rule, err := eng.CreateRule(c, req.Trigger, req.Action, req.Description)
			if err != nil {
				if errors.Is(err, engine.ErrInvalidRule) {
					c.JSON(400, gin.H{"error": err.Error()})
					return
				}
				c.JSON(500, gin.H{"error": "Failed to create rule"})
				return
			}
			c.JSON(201, rule)
		})
		r.PUT("/rules/:id/toggle", middlewareManager.RequireAdmin(), func(c *gin.Context) {
			id, err := strconv.Atoi(c.Param("id"))
			if err != nil {
				c.JSON(400, gin.H{"error": "Invalid rule id"})
				return
			}
			rule, err := eng.ToggleRule(c, id)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					c.JSON(404, gin.H{"error": "Rule not found"})
					return
				}
				c.JSON(500, gin.H{"error": "Failed to toggle rule"})
				return
			}
			c.JSON(200, rule)
		})
		r.DELETE("/rules/:id", middlewareManager.RequireAdmin(), func(c *gin.Context) {
			id, err := strconv.Atoi(c.Param("id"))
			if err != nil {
				c.JSON(400, gin.H{"error": "Invalid rule id"})
				return
			}
			if err := eng.DeleteRule(c, id); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					c.JSON(404, gin.H{"error": "Rule not found"})
					return
				}
				c.JSON(500, gin.H{"error": "Failed to delete rule"})
				return
			}
			c.JSON(200, gin.H{"message": "Rule deleted"})
		})
		r.POST("/rules/:id/test", middlewareManager.RequireAdmin(), func(c *gin.Context) {
			id, err := strconv.Atoi(c.Param("id"))
			if err != nil {
				c.JSON(400, gin.H{"error": "Invalid rule id"})
				return
			}
			result, err := eng.TestRule(c, id)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					c.JSON(404, gin.H{"error": "Rule not found"})
					return
				}
				c.JSON(500, gin.H{"error": "Failed to test rule"})
				return
			}
			c.JSON(200, result)
		})

		// Manual sensor trigger for areas without a wired motion sensor.
		r.POST("/motion", func(c *gin.Context) {
			var req models.MotionRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}
			triggered := eng.ProcessEvent(c, "motion", map[string]any{"area": req.Area})
			c.JSON(200, gin.H{"triggered": triggered})
		})

		r.POST("/scenes", middlewareManager.RequireAdmin(), func(c *gin.Context) {
			var req models.SceneRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}
			scene := &domain.Scene{Name: req.Name, Settings: req.Settings}
			if err := st.CreateScene(c, scene); err != nil {
				if errors.Is(err, store.ErrSceneExists) {
					c.JSON(409, gin.H{"error": err.Error()})
					return
				}
				c.JSON(500, gin.H{"error": "Failed to create scene"})
				return
			}
			c.JSON(201, scene)
		})
		r.GET("/energy-savings", func(c *gin.Context) {
			savings, err := st.EnergySavings(c)
			if err != nil {
				c.JSON(500, gin.H{"error": "Failed to load energy savings"})
				return
			}
			c.JSON(200, savings)
		})
	}
}
