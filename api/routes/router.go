// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"flightbook/api/docs"
	"flightbook/internal/bookings"
	"flightbook/internal/schedules"
	"flightbook/internal/shared/config"
	"flightbook/internal/shared/database"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Router holds all route dependencies
type Router struct {
	config    *config.Config
	db        *database.DB
	schedules schedules.Service
	bookings  bookings.Service
}

// NewRouter creates a new router instance. Services are built in main so
// their collaborators can be injected.
func NewRouter(cfg *config.Config, db *database.DB, scheduleService schedules.Service, bookingService bookings.Service) *Router {
	return &Router{
		config:    cfg,
		db:        db,
		schedules: scheduleService,
		bookings:  bookingService,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check and basic info endpoints
	r.setupHealthRoutes(engine)
	r.setupDocsRoutes(engine)

	// API routes
	api := engine.Group(r.config.GetAPIBasePath())
	{
		schedules.SetupScheduleRoutes(api, schedules.NewController(r.schedules))
		bookings.SetupBookingRoutes(api, bookings.NewController(r.bookings))
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if r.db != nil {
			if err := r.db.HealthCheck(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":    "unhealthy",
					"error":     err.Error(),
					"timestamp": time.Now(),
					"service":   r.config.ServiceName,
				})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"status":     "healthy",
			"timestamp":  time.Now(),
			"service":    r.config.ServiceName,
			"lock_store": r.config.SeatLock.Backend,
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET(r.config.GetAPIBasePath()+"/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}

// setupDocsRoutes serves the embedded OpenAPI document and Swagger UI
func (r *Router) setupDocsRoutes(engine *gin.Engine) {
	engine.GET("/openapi.yaml", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/yaml", docs.OpenAPI)
	})
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/openapi.yaml")))
}
