package api

import (
	"errors"

	"github.com/gin-gonic/gin"

	"officehub/internal/parking"
	"officehub/internal/store"
	"officehub/internal/web/middleware"
	"officehub/internal/web/models"
)

func parkingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrSpotNotFound):
		c.JSON(404, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrSpotUnavailable),
		errors.Is(err, store.ErrSpotOccupied),
		errors.Is(err, store.ErrNoReservation):
		c.JSON(409, gin.H{"error": err.Error()})
	default:
		c.JSON(500, gin.H{"error": "Parking operation failed"})
	}
}

func RegisterParkingRoutes(router *gin.Engine, parkingService *parking.Service, middlewareManager *middleware.MiddlewareManager) {
	r := router.Group("/parking")
	r.Use(middlewareManager.RequireAuth())
	{
		r.GET("/spots", func(c *gin.Context) {
			available, err := parkingService.Available(c)
			if err != nil {
				c.JSON(500, gin.H{"error": "Failed to list spots"})
				return
			}
			c.JSON(200, gin.H{"available_spots": available})
		})
		r.GET("/spots/all", func(c *gin.Context) {
			statuses, err := parkingService.AllSpots(c)
			if err != nil {
				c.JSON(500, gin.H{"error": "Failed to list spots"})
				return
			}
			c.JSON(200, gin.H{"spots": statuses})
		})
		r.GET("/reservations", func(c *gin.Context) {
			spots, err := parkingService.MyReservations(c, c.GetString("username"))
			if err != nil {
				c.JSON(500, gin.H{"error": "Failed to list reservations"})
				return
			}
			c.JSON(200, gin.H{"reserved_spots": spots})
		})
		r.POST("/reserve", func(c *gin.Context) {
			var req models.SpotRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}
			res, err := parkingService.Reserve(c, req.SpotID, c.GetString("username"))
			if err != nil {
				parkingError(c, err)
				return
			}
			c.JSON(201, res)
		})
		r.POST("/guest-pass", func(c *gin.Context) {
			var req models.SpotRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}
			res, err := parkingService.GuestPass(c, req.SpotID)
			if err != nil {
				parkingError(c, err)
				return
			}
			c.JSON(201, res)
		})
		r.POST("/checkin", func(c *gin.Context) {
			var req models.SpotRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}
			checkin, err := parkingService.Checkin(c, req.SpotID, c.GetString("username"))
			if err != nil {
				parkingError(c, err)
				return
			}
			c.JSON(200, checkin)
		})
		r.POST("/unreserve", func(c *gin.Context) {
			var req models.SpotRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}
			if err := parkingService.Unreserve(c, req.SpotID, c.GetString("username")); err != nil {
				parkingError(c, err)
				return
			}
			c.JSON(200, gin.H{"message": "Reservation removed"})
		})

		admin := r.Group("")
		admin.Use(middlewareManager.RequireAdmin())
		{
			admin.POST("/clear", func(c *gin.Context) {
				var req models.SpotRequest
				if err := c.ShouldBindJSON(&req); err != nil {
					c.JSON(400, gin.H{"error": "Invalid request"})
					return
				}
				if err := parkingService.Clear(c, req.SpotID); err != nil {
					parkingError(c, err)
					return
				}
				c.JSON(200, gin.H{"message": "Spot cleared"})
			})
			admin.GET("/violations", func(c *gin.Context) {
				violations, err := parkingService.Violations(c)
				if err != nil {
					c.JSON(500, gin.H{"error": "Failed to audit reservations"})
					return
				}
				c.JSON(200, gin.H{"violations": violations})
			})
		}
	}
}
