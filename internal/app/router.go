package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"nemt/internal/handler"
	"nemt/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	TripHandler      *handler.TripHandler
	TimesheetHandler *handler.TimesheetHandler
	ShiftHandler     *handler.ShiftHandler
	RedisClient      *redis.Client
	NewRelicApp      *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Trip routes.
		trips := v1.Group("/trips")
		{
			trips.POST("", deps.TripHandler.CreateTrip)
			trips.GET("", deps.TripHandler.GetAll)
			trips.GET("/:id", deps.TripHandler.GetTrip)
			trips.POST("/:id/transition", deps.TripHandler.Transition)
			trips.GET("/:id/actions", deps.TripHandler.Actions)
			trips.GET("/:id/history", deps.TripHandler.History)
		}

		// Driver duty-cycle routes.
		drivers := v1.Group("/drivers")
		{
			drivers.POST("/:id/clock-in", deps.TimesheetHandler.ClockIn)
			drivers.POST("/:id/clock-out", deps.TimesheetHandler.ClockOut)
			drivers.POST("/:id/break/start", deps.TimesheetHandler.StartBreak)
			drivers.POST("/:id/break/end", deps.TimesheetHandler.EndBreak)
			drivers.GET("/:id/duty", deps.TimesheetHandler.DutyStatus)
			drivers.GET("/:id/timesheet", deps.TimesheetHandler.GetTimesheet)
			drivers.GET("/:id/shifts", deps.ShiftHandler.ListByDriver)
		}

		// Shift routes.
		shifts := v1.Group("/shifts")
		{
			shifts.POST("", deps.ShiftHandler.Create)
			shifts.GET("/:id", deps.ShiftHandler.Get)
			shifts.PUT("/:id", deps.ShiftHandler.Update)
			shifts.POST("/:id/cancel", deps.ShiftHandler.Cancel)
		}
	}

	return router
}
