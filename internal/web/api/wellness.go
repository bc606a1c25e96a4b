package api

import (
	"math/rand"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"officehub/internal/web/middleware"
)

type wellnessCheckin struct {
	Name   string `json:"name" binding:"required"`
	Mood   int    `json:"mood"`
	Energy int    `json:"energy"`
	Stress int    `json:"stress"`
	Time   string `json:"time,omitempty"`
}

// Wellness sensors do not exist yet, so the air quality and noise endpoints
// return simulated readings until the hardware lands.
func RegisterWellnessRoutes(router *gin.Engine, middlewareManager *middleware.MiddlewareManager) {
	var (
		mu       sync.Mutex
		checkins []wellnessCheckin
	)

	r := router.Group("/wellness")
	r.Use(middlewareManager.RequireAuth())
	{
		r.POST("/checkin", func(c *gin.Context) {
			var req wellnessCheckin
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}
			req.Time = time.Now().Format(time.RFC3339)
			mu.Lock()
			checkins = append(checkins, req)
			mu.Unlock()

			advice := []string{}
			if req.Stress > 7 {
				advice = append(advice, "Take a break!")
			}
			if req.Energy < 4 {
				advice = append(advice, "Drink coffee or go for a walk")
			}
			if req.Mood < 5 {
				advice = append(advice, "Talk to a friend")
			}
			c.JSON(200, gin.H{
				"message": "Thank you! I received your check-in",
				"advice":  advice,
			})
		})
		r.GET("/air-quality", func(c *gin.Context) {
			co2 := 400 + rand.Intn(601)
			temp := 20 + rand.Intn(7)
			humidity := 40 + rand.Intn(31)

			status := "Good"
			if co2 > 800 {
				status = "Bad - High CO2 levels"
			}
			if temp > 25 {
				status = "Too hot"
			}
			c.JSON(200, gin.H{
				"co2":         co2,
				"temperature": temp,
				"humidity":    humidity,
				"status":      status,
			})
		})
		r.GET("/noise-levels", func(c *gin.Context) {
			noise := 30 + rand.Intn(51)
			var status string
			switch {
			case noise < 50:
				status = "Quiet - Good for work"
			case noise < 70:
				status = "Moderate"
			default:
				status = "Too noisy!"
			}
			c.JSON(200, gin.H{"noise_db": noise, "status": status})
		})
	}
}
