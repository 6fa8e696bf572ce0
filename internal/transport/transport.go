package transport

import (
	"time"

	"github.com/anna199/TeachTogether/internal/transport/middleware"

	"github.com/gin-gonic/gin"
)

func InitRoutes(
	eventHandler *EventHandler,
	registrationHandler *RegistrationHandler,
	healthHandler *HealthHandler,
	requestTimeout time.Duration,
) *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.Timeout(requestTimeout))

	api := router.Group("/api")
	{
		events := api.Group("/events")
		{
			events.GET("", eventHandler.GetUpcomingEvents)
			events.POST("", eventHandler.CreateEvent)
			events.GET("/search/filter", eventHandler.SearchEvents)
			events.GET("/:id", eventHandler.GetEvent)
			events.PUT("/:id", eventHandler.UpdateEvent)
			events.DELETE("/:id", eventHandler.DeleteEvent)

			// Registration routes
			events.POST("/:id/register", registrationHandler.Register)
			events.DELETE("/:id/register/:participantEmail", registrationHandler.CancelRegistration)
		}
	}

	// Health check
	router.GET("/health", healthHandler.Health)

	return router
}
