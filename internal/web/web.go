package web

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"officehub/auth"
	"officehub/internal/engine"
	"officehub/internal/parking"
	"officehub/internal/rooms"
	"officehub/internal/store"
	"officehub/internal/web/api"
	"officehub/internal/web/middleware"
)

type WebServer struct {
	router *gin.Engine
}

func NewWebServer(st store.Store, authModule *auth.AuthModule, eng *engine.Engine, parkingService *parking.Service, roomService *rooms.Service) *WebServer {
	router := gin.Default()

	middlewareManager := middleware.NewMiddlewareManager(authModule)
	router.Use(middleware.RateLimiter(rate.Limit(10), 20))

	// The room catalog only changes on redeploy; cache it.
	catalogCache := middleware.Cache(cache.New(5*time.Minute, 10*time.Minute), 5*time.Minute)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api.RegisterAuthRoutes(router, authModule, middlewareManager)
	api.RegisterUserRoutes(router, authModule, middlewareManager)
	api.RegisterAutomationRoutes(router, eng, st, middlewareManager)
	api.RegisterParkingRoutes(router, parkingService, middlewareManager)
	api.RegisterRoomRoutes(router, roomService, middlewareManager, catalogCache)
	api.RegisterClimateRoutes(router, st, middlewareManager)
	api.RegisterWellnessRoutes(router, middlewareManager)

	return &WebServer{router: router}
}

// Router exposes the underlying gin engine for tests.
func (ws *WebServer) Router() *gin.Engine {
	return ws.router
}

func (ws *WebServer) Start(addr string) error {
	return ws.router.Run(addr)
}
