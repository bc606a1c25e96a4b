package api

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"officehub/internal/rooms"
	"officehub/internal/store"
	"officehub/internal/web/middleware"
	"officehub/internal/web/models"
)

func RegisterRoomRoutes(router *gin.Engine, roomService *rooms.Service, middlewareManager *middleware.MiddlewareManager, catalogCache gin.HandlerFunc) {
	r := router.Group("/rooms")
	r.Use(middlewareManager.RequireAuth())
	{
		r.GET("", catalogCache, func(c *gin.Context) {
			catalog, err := roomService.Rooms(c)
			if err != nil {
				c.JSON(500, gin.H{"error": "Failed to list rooms"})
				return
			}
			c.JSON(200, gin.H{"rooms": catalog})
		})
		r.GET("/status", func(c *gin.Context) {
			statuses, err := roomService.Status(c, time.Now())
			if err != nil {
				c.JSON(500, gin.H{"error": "Failed to load room status"})
				return
			}
			c.JSON(200, gin.H{"rooms": statuses})
		})
		r.GET("/bookings", func(c *gin.Context) {
			bookings, err := roomService.MyBookings(c, c.GetString("username"), time.Now())
			if err != nil {
				c.JSON(500, gin.H{"error": "Failed to list bookings"})
				return
			}
			c.JSON(200, gin.H{"bookings": bookings})
		})
		r.GET("/bookings/week", func(c *gin.Context) {
			start := time.Now()
			if raw := c.Query("start"); raw != "" {
				parsed, err := time.Parse(time.RFC3339, raw)
				if err != nil {
					c.JSON(400, gin.H{"error": "Invalid start time, expected RFC 3339"})
					return
				}
				start = parsed
			}
			bookings, err := roomService.WeekBookings(c, start)
			if err != nil {
				c.JSON(500, gin.H{"error": "Failed to list bookings"})
				return
			}
			c.JSON(200, gin.H{"bookings": bookings})
		})
		r.POST("/book", func(c *gin.Context) {
			var req models.BookRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}
			start, err := time.Parse(time.RFC3339, req.StartTime)
			if err != nil {
				c.JSON(400, gin.H{"error": "Invalid start time, expected RFC 3339"})
				return
			}
			booking, err := roomService.Book(c, req.RoomID, start, req.DurationMinutes, c.GetString("username"))
			switch {
			case errors.Is(err, rooms.ErrInvalidInterval):
				c.JSON(400, gin.H{"error": err.Error()})
			case errors.Is(err, store.ErrRoomNotFound):
				c.JSON(404, gin.H{"error": err.Error()})
			case errors.Is(err, store.ErrBookingConflict):
				c.JSON(409, gin.H{"error": err.Error()})
			case err != nil:
				c.JSON(500, gin.H{"error": "Failed to book room"})
			default:
				c.JSON(201, booking)
			}
		})
		r.DELETE("/bookings/:id", func(c *gin.Context) {
			err := roomService.Cancel(c, c.Param("id"), c.GetString("username"), c.GetString("role"))
			switch {
			case errors.Is(err, store.ErrNotFound):
				c.JSON(404, gin.H{"error": "Booking not found"})
			case errors.Is(err, rooms.ErrForbidden):
				c.JSON(403, gin.H{"error": err.Error()})
			case err != nil:
				c.JSON(500, gin.H{"error": "Failed to cancel booking"})
			default:
				c.JSON(200, gin.H{"message": "Booking cancelled"})
			}
		})
	}
}
