package bookings

import (
	"reflect"
	"strings"
	"sync"

	"flightbook/internal/seatlock"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerValidationsOnce sync.Once

// RegisterValidations installs the seatnumber tag and JSON field names on
// gin's validator. Safe to call more than once.
func RegisterValidations() {
	registerValidationsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return field.Name
			}
			return name
		})

		_ = v.RegisterValidation("seatnumber", func(fl validator.FieldLevel) bool {
			return seatlock.ValidateSeatNumber(fl.Field().String()) == nil
		})
	})
}

// SetupBookingRoutes configures all booking-related routes
func SetupBookingRoutes(rg *gin.RouterGroup, controller Controller) {
	RegisterValidations()

	bookings := rg.Group("/bookings")
	{
		bookings.POST("", controller.CreateBooking) // POST /api/v1/bookings

		bookings.GET("/schedule/:scheduleId/reserved", controller.GetReservedSeats) // GET /api/v1/bookings/schedule/:scheduleId/reserved
		bookings.GET("/user/:userId", controller.GetUserBookings)                   // GET /api/v1/bookings/user/:userId
		bookings.GET("/:id", controller.GetBooking)                                 // GET /api/v1/bookings/:id
	}
}

// Route definitions for reference:
//
// POST   /api/v1/bookings                                   - Book seats (all or nothing)
// Request body: { "schedule_id": 100, "user_id": 200, "seat_numbers": ["A01", "A02"] }
//
// GET    /api/v1/bookings/schedule/:scheduleId/reserved     - Seats locked by in-flight bookings
// GET    /api/v1/bookings/:id                               - Get specific booking
// GET    /api/v1/bookings/user/:userId?page=1&limit=10      - Get user's bookings with pagination
