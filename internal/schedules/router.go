package schedules

import (
	"github.com/gin-gonic/gin"
)

func SetupScheduleRoutes(router *gin.RouterGroup, controller Controller) {
	// Public routes - anyone can search and browse the catalog
	flights := router.Group("/flights")
	{
		flights.POST("/search", controller.SearchSchedules)                // POST /api/v1/flights/search - Search schedules by route and day
		flights.GET("/schedules/:scheduleId", controller.GetSchedule)      // GET /api/v1/flights/schedules/:scheduleId - Schedule with flight and plane
		flights.GET("/schedules/:scheduleId/seats", controller.GetSeatMap) // GET /api/v1/flights/schedules/:scheduleId/seats - Seat map
		flights.GET("/routes", controller.GetRoutes)                       // GET /api/v1/flights/routes - All flight routes
		flights.GET("/planes/:planeId", controller.GetPlane)               // GET /api/v1/flights/planes/:planeId - Plane details
	}

	// Admin routes - catalog management
	admin := router.Group("/admin/management")
	{
		admin.POST("/planes", controller.CreatePlane)                            // POST /api/v1/admin/management/planes
		admin.POST("/flights", controller.CreateFlight)                          // POST /api/v1/admin/management/flights
		admin.POST("/schedules", controller.CreateSchedule)                      // POST /api/v1/admin/management/schedules
		admin.PUT("/flights/:flightId/plane/:planeId", controller.ReassignPlane) // PUT /api/v1/admin/management/flights/:flightId/plane/:planeId
	}
}
