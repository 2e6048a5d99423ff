package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/frello-ai/backend/internal/api"
	"github.com/frello-ai/backend/internal/middleware"
)

// Handlers bundles the API handlers the router wires up.
type Handlers struct {
	Assistant *api.AssistantHandler
	Chat      *api.ChatHandler
	Settings  *api.SettingsHandler
	Plan      *api.PlanHandler
}

// SetupRouter configures the application routes
func SetupRouter(
	handlers Handlers,
	validator middleware.TokenValidator,
	limiter *middleware.RateLimiter,
	allowedOrigins []string,
) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.CORS(allowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(validator))
	{
		handlers.Chat.RegisterRoutes(protected)
		handlers.Settings.RegisterRoutes(protected)
		handlers.Plan.RegisterRoutes(protected)
	}

	// Assistant routes additionally go through the burst rate limiter.
	generative := v1.Group("")
	generative.Use(middleware.AuthMiddleware(validator))
	if limiter != nil {
		generative.Use(limiter.Middleware())
	}
	handlers.Assistant.RegisterRoutes(generative)

	return router
}
